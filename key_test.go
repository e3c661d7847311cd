package depot

import (
	"reflect"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Equality(t *testing.T) {
	assert.Equal(t, KeyOf[Animal](), KeyOf[Animal]())
	assert.Equal(t, KeyOf[Animal](Name("x")), NewKey(TypeCapability[Animal](), "x", ""))
	assert.NotEqual(t, KeyOf[Animal](), KeyOf[Animal](Name("x")))
	assert.NotEqual(t, KeyOf[Animal](), KeyOf[*Cat]())

	withString := KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string]()})
	withBool := KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[bool]()})
	assert.NotEqual(t, withString, withBool)
	assert.NotEqual(t, KeyOf[Animal](), withString)

	m := map[Key]int{withString: 1, withBool: 2}
	assert.Equal(t, 1, m[KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string]()})])
}

func TestKey_String(t *testing.T) {
	key := KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[int]()}, Name("tom"))

	assert.Equal(t, `github.com/xraph/depot.Animal; (string, int); "tom"`, key.String())
	assert.Equal(t, "protocol pet", ProtocolKey("pet").String())
	assert.Equal(t, `protocol pet; "x"`, ProtocolKey("pet", Name("x")).String())
}

func TestKey_ProtocolDropsSignature(t *testing.T) {
	key := NewKey(ProtocolCapability("pet"), "", SignatureOf(reflect.TypeFor[string]()))

	assert.Equal(t, ProtocolKey("pet"), key)
	assert.True(t, key.Signature().IsZero())
}

func TestKey_Order(t *testing.T) {
	keys := []Key{
		KeyOf[*Cat](Name("b")),
		KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string]()}),
		KeyOf[Animal](Name("a")),
		KeyOf[Animal](),
		KeyOf[*Cat](),
	}

	slices.SortFunc(keys, Key.Compare)

	assert.Equal(t, []Key{
		KeyOf[*Cat](),
		KeyOf[*Cat](Name("b")),
		KeyOf[Animal](),
		KeyOf[Animal](Name("a")),
		KeyWithArgs[Animal]([]reflect.Type{reflect.TypeFor[string]()}),
	}, keys)

	assert.True(t, KeyOf[Animal]().Less(KeyOf[Animal](Name("a"))))
	assert.False(t, KeyOf[Animal]().Less(KeyOf[Animal]()))
}

func TestTypeIdentity_UsesPackagePath(t *testing.T) {
	assert.Equal(t, "github.com/xraph/depot.Cat", typeIdentity(reflect.TypeFor[Cat]()))
	assert.Equal(t, "[]*github.com/xraph/depot.Cat", typeIdentity(reflect.TypeFor[[]*Cat]()))
	assert.Equal(t, "map[string]github.com/xraph/depot.Animal", typeIdentity(reflect.TypeFor[map[string]Animal]()))
	assert.Equal(t, "<-chan int", typeIdentity(reflect.TypeFor[<-chan int]()))
	assert.Equal(t, "string", typeIdentity(reflect.TypeFor[string]()))
}

func TestCapability(t *testing.T) {
	typed := TypeCapability[Animal]()
	assert.False(t, typed.IsProtocol())
	assert.False(t, typed.IsZero())
	assert.Equal(t, reflect.TypeFor[Animal](), typed.Type())

	protocol := ProtocolCapability("pet")
	assert.True(t, protocol.IsProtocol())
	assert.Equal(t, "pet", protocol.Protocol())
	assert.Nil(t, protocol.Type())

	assert.True(t, Capability{}.IsZero())
}

func localTagA() reflect.Type {
	type tag struct{ A int }
	return reflect.TypeFor[tag]()
}

func localTagB() reflect.Type {
	type tag struct{ B int }
	return reflect.TypeFor[tag]()
}

func TestTypeIdentity_DistinctForSameNamedTypes(t *testing.T) {
	a, b := localTagA(), localTagB()

	assert.NotEqual(t, typeIdentity(a), typeIdentity(b))
	assert.Equal(t, typeIdentity(a), typeIdentity(localTagA()))
	assert.NotEqual(t, SignatureOf(a), SignatureOf(b))

	keyA := NewKey(CapabilityOf(a), "", "")
	keyB := NewKey(CapabilityOf(b), "", "")
	assert.NotEqual(t, keyA, keyB)
	assert.NotZero(t, keyA.Compare(keyB))
	assert.Equal(t, -keyA.Compare(keyB), keyB.Compare(keyA))
}
