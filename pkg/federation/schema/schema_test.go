package schema

import (
	"errors"
	"testing"

	"github.com/diwise/federated-graph/pkg/federation"
	fedErrors "github.com/diwise/federated-graph/pkg/federation/errors"
	"github.com/matryer/is"
)

const ordersSDL string = `
type Order @key(fields: "id") {
	id: ID!
	customerId: ID!
	customer: Customer!
	status: String!
}

extend type Customer @key(fields: "id") {
	id: ID! @external
	orders: [Order!]!
}

type Product @extends @key(fields: "id") {
	id: ID! @external
	orders: [Order!]!
}

type Query {
	orders: [Order!]!
	order(id: ID!): Order
}

type Mutation {
	updateOrderStatus(orderId: ID!, status: String!): Order
}
`

func TestParseOwnedAndExtendedEntities(t *testing.T) {
	is := is.New(t)

	c, err := Parse("orders", ordersSDL)
	is.NoErr(err)

	is.True(c.Owns("Order"))
	is.True(!c.Owns("Customer"))
	is.Equal(c.Entities["Order"].KeyField, "id")
	is.Equal(len(c.Entities["Order"].Fields), 4)

	customer, ok := c.Extensions["Customer"]
	is.True(ok)
	is.Equal(customer.KeyField, "id")
	is.Equal(customer.External, []string{"id"})
	is.Equal(len(customer.ExtensionFields), 1)
	is.Equal(customer.ExtensionFields[0].Name, "orders")
	is.True(customer.IsExternal("id"))

	product, ok := c.Extensions["Product"]
	is.True(ok)
	is.Equal(product.ExtensionFields[0].Name, "orders")
}

func TestParseRootFields(t *testing.T) {
	is := is.New(t)

	c, err := Parse("orders", ordersSDL)
	is.NoErr(err)

	is.Equal(len(c.RootFields[federation.Query]), 2)
	is.Equal(c.RootFields[federation.Query][1].Name, "order")
	is.Equal(len(c.RootFields[federation.Mutation]), 1)
	is.Equal(NamedType(c.RootFields[federation.Query][0].Type), "Order")
}

func TestParseValueTypes(t *testing.T) {
	is := is.New(t)

	c, err := Parse("customers", `
		type Customer @key(fields: "id") { id: ID! address: Address }
		type Address { street: String! city: String! }
		type Query { customer(id: ID!): Customer }
	`)
	is.NoErr(err)

	_, ok := c.ValueTypes["Address"]
	is.True(ok)
	is.Equal(len(c.ValueTypes), 1)

	key, ok := c.KeyField("Customer")
	is.True(ok)
	is.Equal(key, "id")
}

func TestParseRejectsCompoundKeys(t *testing.T) {
	is := is.New(t)

	_, err := Parse("products", `type Product @key(fields: "id sku") { id: ID! sku: String! }`)
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestParseRejectsKeyThatIsNotAField(t *testing.T) {
	is := is.New(t)

	_, err := Parse("products", `type Product @key(fields: "upc") { id: ID! }`)
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestParseRejectsExtensionWithoutKey(t *testing.T) {
	is := is.New(t)

	_, err := Parse("orders", `extend type Customer { orders: [String!]! }`)
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestParseRejectsInvalidSDL(t *testing.T) {
	is := is.New(t)

	_, err := Parse("broken", `type Query { `)
	is.True(errors.Is(err, fedErrors.ErrValidation))
}

func TestWithoutFederationDirectives(t *testing.T) {
	is := is.New(t)

	c, err := Parse("orders", ordersSDL)
	is.NoErr(err)

	def := c.Document.Extensions.ForName("Customer")
	stripped := WithoutFederationDirectives(def)

	is.Equal(len(stripped.Directives), 0)
	is.Equal(len(stripped.Fields.ForName("id").Directives), 0)

	// the parsed document is left untouched
	is.Equal(len(def.Fields.ForName("id").Directives), 1)
}
