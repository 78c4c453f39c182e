package federation

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestStubCarriesOnlyTheKey(t *testing.T) {
	is := is.New(t)

	stub := NewStub(NewKey("Customer", "id", "1"))
	b, err := json.Marshal(stub)

	is.NoErr(err)
	is.Equal(string(b), `{"id":"1"}`)
	is.Equal(len(stub.Attributes()), 0)
}

func TestStubWithAttributesDoesNotDuplicateTheKey(t *testing.T) {
	is := is.New(t)

	stub := NewStubWithAttributes(NewKey("Customer", "id", "2"), map[string]any{
		"id":         "3",
		"__typename": "Customer",
		"name":       "Bob Smith",
	})

	id, ok := stub.Attribute("id")
	is.True(ok)
	is.Equal(id, "2")

	b, err := json.Marshal(stub)
	is.NoErr(err)
	is.Equal(string(b), `{"id":"2","name":"Bob Smith"}`)
}

func TestFullMarshalsAsTheRecord(t *testing.T) {
	is := is.New(t)

	type product struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	var e Entity = NewFull(NewKey("Product", "id", "1"), product{ID: "1", Name: "Laptop Pro"})
	b, err := json.Marshal(e)

	is.NoErr(err)
	is.Equal(string(b), `{"id":"1","name":"Laptop Pro"}`)
	is.Equal(e.Key(), Key{TypeName: "Product", Field: "id", Value: "1"})
}

func TestKeysAreComparable(t *testing.T) {
	is := is.New(t)

	seen := map[Key]int{}
	seen[NewKey("Customer", "id", "1")]++
	seen[NewKey("Customer", "id", "1")]++
	seen[NewKey("Product", "id", "1")]++

	is.Equal(len(seen), 2)
	is.Equal(seen[NewKey("Customer", "id", "1")], 2)
}

func TestRepresentationRoundTrip(t *testing.T) {
	is := is.New(t)

	r := NewRepresentation(NewKey("Customer", "id", "1"), map[string]any{"name": "Alice Johnson"})
	b, err := json.Marshal(r)
	is.NoErr(err)
	is.Equal(string(b), `{"__typename":"Customer","id":"1","name":"Alice Johnson"}`)

	var decoded Representation
	is.NoErr(json.Unmarshal(b, &decoded))
	is.Equal(decoded.TypeName, "Customer")

	id, ok := decoded.KeyValue("id")
	is.True(ok)
	is.Equal(id, "1")
}

func TestRepresentationWithoutTypeNameIsRejected(t *testing.T) {
	is := is.New(t)

	var decoded Representation
	err := json.Unmarshal([]byte(`{"id":"1"}`), &decoded)
	is.True(err != nil)
}

func TestNumericKeyValue(t *testing.T) {
	is := is.New(t)

	var decoded Representation
	is.NoErr(json.Unmarshal([]byte(`{"__typename":"Product","id":4}`), &decoded))

	id, ok := decoded.KeyValue("id")
	is.True(ok)
	is.Equal(id, "4")

	_, ok = decoded.KeyValue("sku")
	is.True(!ok)
}

func TestOperationKindFromString(t *testing.T) {
	is := is.New(t)

	k, ok := OperationKindFromString("MUTATION")
	is.True(ok)
	is.Equal(k, Mutation)
	is.Equal(k.RootTypeName(), "Mutation")

	_, ok = OperationKindFromString("subscription")
	is.True(!ok)
}
