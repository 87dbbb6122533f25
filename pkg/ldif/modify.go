package ldif

import (
	"strconv"
	"strings"
)

// ModificationKind identifies the kind of change a Modification applies to
// an attribute.
type ModificationKind int

const (
	// ModAdd adds the given values to the attribute (creating it if
	// necessary).
	ModAdd ModificationKind = iota
	// ModDelete removes the given values from the attribute, or the entire
	// attribute if no values are given.
	ModDelete
	// ModReplace replaces the attribute's values wholesale with the given
	// values (removing the attribute if none are given).
	ModReplace
	// ModIncrement adds the (single, integer) given value to the attribute's
	// existing (single, integer) value.
	ModIncrement
	// ModSoftAdd behaves like ModAdd except that an AlreadyExists-style
	// collision on any individual value is swallowed rather than surfaced.
	ModSoftAdd
)

// Modification describes one change-list entry to apply to an entry during
// a modify operation.
type Modification struct {
	Kind      ModificationKind
	Attribute string
	Values    []string
}

// ApplyModifications applies an ordered list of modifications to the entry
// in place. It reports whether any modification altered the objectClass
// attribute, which callers must use to invalidate any cached objectClass-
// derived schema flags before re-checking the schema.
func (e *Entry) ApplyModifications(mods []Modification) (objectClassChanged bool, err error) {
	for _, mod := range mods {
		if strings.EqualFold(mod.Attribute, "objectClass") {
			objectClassChanged = true
		}
		switch mod.Kind {
		case ModAdd:
			if err := e.applyAdd(mod, false); err != nil {
				return objectClassChanged, err
			}
		case ModSoftAdd:
			// A SoftAdd is an Add whose "value already present" outcome is
			// swallowed rather than surfaced as an error.
			if err := e.applyAdd(mod, true); err != nil {
				return objectClassChanged, err
			}
		case ModDelete:
			e.applyDelete(mod)
		case ModReplace:
			e.Set(mod.Attribute, mod.Values...)
		case ModIncrement:
			if err := e.applyIncrement(mod); err != nil {
				return objectClassChanged, err
			}
		}
	}
	return objectClassChanged, nil
}

func (e *Entry) applyAdd(mod Modification, soft bool) error {
	existing, _ := e.Get(mod.Attribute)
	result := append([]string{}, existing...)
	for _, v := range mod.Values {
		duplicate := false
		for _, ev := range existing {
			if ev == v {
				duplicate = true
				break
			}
		}
		if duplicate {
			if soft {
				continue
			}
			return Result{Code: AlreadyExists, Text: "value already present: " + v}
		}
		result = append(result, v)
	}
	e.Set(mod.Attribute, result...)
	return nil
}

func (e *Entry) applyDelete(mod Modification) {
	if len(mod.Values) == 0 {
		e.Set(mod.Attribute)
		return
	}
	existing, ok := e.Get(mod.Attribute)
	if !ok {
		return
	}
	remaining := existing[:0:0]
	for _, ev := range existing {
		remove := false
		for _, v := range mod.Values {
			if ev == v {
				remove = true
				break
			}
		}
		if !remove {
			remaining = append(remaining, ev)
		}
	}
	e.Set(mod.Attribute, remaining...)
}

func (e *Entry) applyIncrement(mod Modification) error {
	if len(mod.Values) != 1 {
		return Result{Code: UnwillingToPerform, Text: "increment requires exactly one value"}
	}
	existing, _ := e.Get(mod.Attribute)
	if len(existing) != 1 {
		return Result{Code: UnwillingToPerform, Text: "increment requires a single-valued attribute"}
	}
	current, err := strconv.ParseInt(existing[0], 10, 64)
	if err != nil {
		return Result{Code: UnwillingToPerform, Text: "non-numeric attribute value for increment"}
	}
	delta, err := strconv.ParseInt(mod.Values[0], 10, 64)
	if err != nil {
		return Result{Code: UnwillingToPerform, Text: "non-numeric increment amount"}
	}
	e.Set(mod.Attribute, strconv.FormatInt(current+delta, 10))
	return nil
}
