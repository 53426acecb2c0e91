// Package polyjson decodes polymorphic JSON objects.
//
// A payload is declared as a base shape; a Registry of discrimination rules
// decides at runtime which variant shape it really is:
//
// - PresenceRule: the object contains a distinguishing field.
// - ValueRule: a discriminator field holds an enumerated value.
//
// Rules are evaluated in registration order and the first match wins; when
// none matches, the base's fallback shape is used. Decoding is permissive:
// absent fields are empty and unknown members are ignored. Strict field
// validation is opt-in through DecodeOpt.Strict.
//
// Decoded values expose the base fields through AsBase and the richer variant
// fields through Narrow; TypeTag tells which shape a value holds.
//
// Typical usage:
//
//	reg := polyjson.NewRegistry()
//	_ = reg.DefineShape(polyjson.Shape{Name: "Base", Fields: []string{"BaseProp1", "BaseProp2", "BaseProp3"}})
//	_ = reg.DefineShape(polyjson.Shape{Name: "Derived", Extends: "Base", Fields: []string{"DerivedPropA"}})
//	_ = reg.Register("Base", polyjson.Present("DerivedPropA", "Derived"))
//	_ = reg.SetFallback("Base", "Base")
//	reg.Freeze()
//
//	vals, err := polyjson.NewDecoder(reg).DecodeBytes("Base", data)
//	for _, v := range vals {
//		if polyjson.TypeTag(v) == "Derived" {
//			d, _ := polyjson.Narrow(v, "Derived")
//			fmt.Println(d.Field("DerivedPropA"))
//		}
//	}
//
// Design policy:
// - Keep only public APIs in the root package; put token handling under internal/.
// - JSON drivers live under source/; the go-json driver is the default.
// - Prefer black-box testing against public APIs.
package polyjson
