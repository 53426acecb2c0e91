// Package myapi is a typed client model over polyjson. It defines two shape
// families: Base/Derived, told apart by the presence of DerivedPropA, and
// MyType/MyTypeVariant, told apart by the Type discriminator, which carries
// either the shape name or its ordinal.
package myapi

import (
	"fmt"
	"strconv"
	"sync"

	polyjson "github.com/reoring/polyjson"
)

// FieldType is the discriminator member of the MyType family. It is not a
// field of either shape.
const FieldType = "Type"

var baseFields = []string{FieldBaseProp1, FieldBaseProp2, FieldBaseProp3}

// Register defines the four shapes and their rules on reg.
func Register(reg *polyjson.Registry) error {
	steps := []func() error{
		func() error { return reg.DefineShape(polyjson.Shape{Name: ShapeBase, Fields: baseFields}) },
		func() error {
			return reg.DefineShape(polyjson.Shape{Name: ShapeDerived, Extends: ShapeBase, Fields: []string{FieldDerivedPropA}})
		},
		func() error { return reg.Register(ShapeBase, polyjson.Present(FieldDerivedPropA, ShapeDerived)) },
		func() error { return reg.SetFallback(ShapeBase, ShapeBase) },

		func() error { return reg.DefineShape(polyjson.Shape{Name: ShapeMyType, Fields: baseFields}) },
		func() error {
			return reg.DefineShape(polyjson.Shape{Name: ShapeMyTypeVariant, Extends: ShapeMyType, Fields: []string{FieldDerivedPropA}})
		},
		func() error { return reg.Register(ShapeMyType, polyjson.Equals(FieldType, ShapeMyTypeVariant, ShapeMyTypeVariant)) },
		// Ordinal of MyTypeVariant within the MyType discriminator enum.
		func() error { return reg.Register(ShapeMyType, polyjson.Equals(FieldType, strconv.Itoa(1), ShapeMyTypeVariant)) },
		func() error { return reg.SetFallback(ShapeMyType, ShapeMyType) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("myapi: register shapes: %w", err)
		}
	}
	return reg.Validate()
}

var (
	registryOnce     sync.Once
	registryInstance *polyjson.Registry
	registryErr      error
)

// Registry returns a frozen registry holding this package's shapes. It is
// built on first use.
func Registry() (*polyjson.Registry, error) {
	registryOnce.Do(func() {
		reg := polyjson.NewRegistry()
		if err := Register(reg); err != nil {
			registryErr = err
			return
		}
		reg.Freeze()
		registryInstance = reg
	})
	return registryInstance, registryErr
}
