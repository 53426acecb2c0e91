package myapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polyjson "github.com/reoring/polyjson"
	"github.com/reoring/polyjson/myapi"
)

func static(body string) myapi.FetcherFunc {
	return func(context.Context) ([]byte, error) { return []byte(body), nil }
}

const plain = `[
  {"BaseProp1":"Alpha","BaseProp2":"Bravo","BaseProp3":"Charlie"},
  {"BaseProp1":"Delta","BaseProp2":"Echo","BaseProp3":"Foxtrot","DerivedPropA":"Golf"}
]`

func TestClient_GetAll_FilterVariants(t *testing.T) {
	c, err := myapi.NewClient(static(plain))
	require.NoError(t, err)

	items, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	var variants []myapi.Base
	for _, it := range items {
		if it.Kind() == myapi.KindDerived {
			variants = append(variants, it)
		}
	}
	require.Len(t, variants, 1)
	assert.True(t, items[1] == variants[0], "filtered element must be the collection's own element")

	_, ok := items[1].(myapi.Derived)
	assert.True(t, ok, "variant records satisfy Derived")
	_, ok = items[0].(myapi.Derived)
	assert.False(t, ok, "base records do not satisfy Derived")

	d, err := myapi.AsDerived(variants[0])
	require.NoError(t, err)
	assert.Equal(t, "Golf", d.DerivedPropA())
	assert.Equal(t, "Delta", d.BaseProp1())
	assert.Same(t, items[1].Value(), d.Value())

	assert.Equal(t, myapi.KindBase, items[0].Kind())
	assert.Equal(t, "Charlie", items[0].BaseProp3())
}

func TestClient_GetAll_TypeDiscriminator(t *testing.T) {
	body := `[
	  {"Type":"MyType","BaseProp1":"Alpha","BaseProp2":"Bravo","BaseProp3":"Charlie"},
	  {"Type":"MyTypeVariant","BaseProp1":"Delta","BaseProp2":"Echo","BaseProp3":"Foxtrot","DerivedPropA":"Golf"},
	  {"Type":1,"BaseProp1":"Hotel","DerivedPropA":"India"}
	]`
	c, err := myapi.NewClient(static(body), myapi.WithBase(myapi.ShapeMyType))
	require.NoError(t, err)
	items, err := c.GetAll(context.Background())
	require.NoError(t, err)

	kinds := make([]myapi.Kind, len(items))
	for i, it := range items {
		kinds[i] = it.Kind()
	}
	assert.Equal(t, []myapi.Kind{myapi.KindMyType, myapi.KindMyTypeVariant, myapi.KindMyTypeVariant}, kinds)

	d, err := myapi.AsDerived(items[2])
	require.NoError(t, err)
	assert.Equal(t, "India", d.DerivedPropA())
}

func TestClient_GetItems_Envelopes(t *testing.T) {
	body := `[
	  {"Type":"MyType","Properties":{"BaseProp1":"Alpha"}},
	  {"Type":"MyTypeVariant","Properties":{"BaseProp1":"Delta","DerivedPropA":"Golf"}}
	]`
	c, err := myapi.NewClient(static(body), myapi.WithBase(myapi.ShapeMyType), myapi.WithEnvelopes())
	require.NoError(t, err)

	items, err := c.GetItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, myapi.KindMyType, items[0].Kind)
	assert.Equal(t, myapi.KindMyTypeVariant, items[1].Kind)
	assert.Equal(t, items[1].Kind, items[1].Properties.Kind())
	_, ok := items[1].Properties.(myapi.Derived)
	assert.True(t, ok)
	_, ok = items[0].Properties.(myapi.Derived)
	assert.False(t, ok)

	all, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].BaseProp1())
}

func TestAsDerived_Base(t *testing.T) {
	c, err := myapi.NewClient(static(plain))
	require.NoError(t, err)
	items, err := c.GetAll(context.Background())
	require.NoError(t, err)

	_, err = myapi.AsDerived(items[0])
	var ne *polyjson.NarrowingError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, polyjson.Tag("Base"), ne.Have)
	assert.Equal(t, "Derived", ne.Want)
}

func TestRecord_SettersShareValue(t *testing.T) {
	c, err := myapi.NewClient(static(plain))
	require.NoError(t, err)
	items, err := c.GetAll(context.Background())
	require.NoError(t, err)

	d, err := myapi.AsDerived(items[1])
	require.NoError(t, err)
	d.SetBaseProp2("Zulu")
	d.SetDerivedPropA("Yankee")
	assert.Equal(t, "Zulu", items[1].BaseProp2())

	b, err := items[1].(interface{ MarshalJSON() ([]byte, error) }).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"BaseProp1":"Delta","BaseProp2":"Zulu","BaseProp3":"Foxtrot","DerivedPropA":"Yankee"}`, string(b))
}

func TestClient_Errors(t *testing.T) {
	boom := errors.New("boom")
	c, err := myapi.NewClient(myapi.FetcherFunc(func(context.Context) ([]byte, error) { return nil, boom }))
	require.NoError(t, err)
	_, err = c.GetAll(context.Background())
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err = myapi.NewClient(static(plain))
	require.NoError(t, err)
	_, err = c.GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	c, err = myapi.NewClient(static(`[{"BaseProp1":7}]`))
	require.NoError(t, err)
	_, err = c.GetAll(context.Background())
	var de *polyjson.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 0, de.Index)
	assert.Equal(t, polyjson.CodeInvalidType, de.Code())
}

func TestClient_WithStrictDecoder(t *testing.T) {
	reg := polyjson.NewRegistry()
	require.NoError(t, myapi.Register(reg))
	dec := polyjson.NewDecoder(reg, polyjson.DecodeOpt{Strictness: polyjson.Strictness{OnDuplicateKey: polyjson.Error}})
	c, err := myapi.NewClient(static(`[{"BaseProp1":"a","BaseProp1":"b"}]`), myapi.WithDecoder(dec))
	require.NoError(t, err)
	_, err = c.GetAll(context.Background())
	iss, ok := polyjson.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, polyjson.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/0/BaseProp1", iss[0].Path)
}
