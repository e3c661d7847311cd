package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Database struct {
	DSN string
}

type Logger struct {
	Prefix string
}

type UserService struct {
	DB     *Database
	Logger *Logger
}

func NewUserService(db *Database, logger *Logger) *UserService {
	return &UserService{DB: db, Logger: logger}
}

type ServiceParams struct {
	In

	DB     *Database
	Logger *Logger `optional:"true"`
	Pet    Animal  `name:"pet"`
}

type ParamService struct {
	params ServiceParams
}

type Kennel struct {
	Pet     Animal
	Logger  *Logger
	Keeper  *Database
	private *Logger
}

type TaggedHandler struct {
	Pet    Animal  `inject:"pet"`
	Logger *Logger `inject:""`
	DB     *Database
	Fixed  *Logger `inject:""`
}

func TestAutowire_ResolvesParameters(t *testing.T) {
	c := New(WithDefaultScope(Singleton))

	require.NoError(t, c.Register(
		Define[*Database](Value(&Database{DSN: "mem"})),
		Define[*Logger](Class[*Logger]()),
		Define[*UserService](Autowire(NewUserService)),
	))

	svc, ok := Resolve[*UserService](c)
	require.True(t, ok)
	assert.Equal(t, "mem", svc.DB.DSN)
	assert.Same(t, MustResolve[*Logger](c), svc.Logger)
}

func TestAutowire_MissingDependency(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(
		Define[*Database](Class[*Database]()),
		Define[*UserService](Autowire(NewUserService)),
	))

	_, err := Lookup[*UserService](c)
	assert.ErrorIs(t, err, ErrMissingDependencySentinel)
}

func TestAutowire_CallerSuppliedArguments(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(Define[*UserService](Autowire(NewUserService))))

	db := &Database{DSN: "given"}
	svc, err := LookupArgs[*UserService](c, []any{db, &Logger{Prefix: "x"}})
	require.NoError(t, err)
	assert.Same(t, db, svc.DB)
	assert.Equal(t, "x", svc.Logger.Prefix)

	_, err = Lookup[*UserService](c)
	assert.ErrorIs(t, err, ErrMissingDependencySentinel, "zero-argument path still resolves from the container")
}

func TestAutowire_ResolverParameter(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(
		Define[*Database](Class[*Database]()),
		Define[*UserService](Autowire(func(r Resolver, db *Database) (*UserService, error) {
			logger, _ := Resolve[*Logger](r)
			return &UserService{DB: db, Logger: logger}, nil
		})),
	))

	svc := MustResolve[*UserService](c)
	assert.NotNil(t, svc.DB)
	assert.Nil(t, svc.Logger)

	// The resolver parameter is not part of the argument signature
	svc, err := LookupArgs[*UserService](c, []any{&Database{DSN: "arg"}})
	require.NoError(t, err)
	assert.Equal(t, "arg", svc.DB.DSN)
}

func TestAutowire_ErrorResult(t *testing.T) {
	c := New()

	expectedErr := errors.New("no connection")
	require.NoError(t, c.Register(Define[*Database](Autowire(func() (*Database, error) {
		return nil, expectedErr
	}))))

	_, err := Lookup[*Database](c)
	assert.ErrorIs(t, err, ErrMissingDependencySentinel)
}

func TestAutowire_InStruct(t *testing.T) {
	c := New()

	require.NoError(t, c.Register(
		Define[*Database](Class[*Database]()),
		Define[Animal](Name("pet"), Class[*Cat]()),
		Define[*ParamService](Autowire(func(p ServiceParams) *ParamService {
			return &ParamService{params: p}
		})),
	))

	svc := MustResolve[*ParamService](c)
	assert.NotNil(t, svc.params.DB)
	assert.Nil(t, svc.params.Logger, "optional dependency left unset")
	assert.Equal(t, "meow", svc.params.Pet.Sound())
}

func TestAutowire_InvalidConstructors(t *testing.T) {
	c := New()

	err := c.Register(
		Define[*Database](Autowire("not a function")),
		Define[*Database](Autowire(func() {})),
		Define[*Database](Autowire(func() (*Database, string) { return nil, "" })),
		Define[*Database](Autowire(func(...string) *Database { return nil })),
		Define[*Database](Autowire(nil)),
		Define[*Database](Autowire(func() *Logger { return nil })),
	)

	assert.ErrorIs(t, err, ErrInvalidDefinitionSentinel)
	assert.Empty(t, c.Keys())
}

func TestPropertyName(t *testing.T) {
	c := New()

	keeper := &Database{DSN: "keeper"}
	require.NoError(t, c.Register(
		Define[Animal](Class[*Dog]()),
		Define[*Kennel](
			Factory(func(Resolver) *Kennel { return &Kennel{Keeper: keeper} }),
			PropertyName("Pet", "Logger", "Keeper"),
		),
	))

	kennel := MustResolve[*Kennel](c)
	assert.Equal(t, "woof", kennel.Pet.Sound())
	assert.NotNil(t, kennel.Logger, "unregistered struct pointers are default-constructed")
	assert.Same(t, keeper, kennel.Keeper, "populated fields are never overwritten")
}

func TestPropertyName_UnknownField(t *testing.T) {
	c := New()

	err := c.Register(
		Define[*Kennel](Class[*Kennel](), PropertyName("Missing")),
		Define[*Kennel](Class[*Kennel](), PropertyName("private")),
		Define[*Cat](Class[*Cat](), PropertyName("")),
	)

	assert.ErrorIs(t, err, ErrInvalidDefinitionSentinel)
	assert.Empty(t, c.Keys())
}

func TestAutowireFields(t *testing.T) {
	c := New()

	fixed := &Logger{Prefix: "fixed"}
	require.NoError(t, c.Register(
		Define[Animal](Name("pet"), Class[*Cat]()),
		Define[*Logger](Value(&Logger{Prefix: "app"})),
		Define[*Database](Class[*Database]()),
		Define[*TaggedHandler](
			Factory(func(Resolver) *TaggedHandler { return &TaggedHandler{Fixed: fixed} }),
			AutowireFields(),
		),
	))

	h := MustResolve[*TaggedHandler](c)
	assert.Equal(t, "meow", h.Pet.Sound())
	assert.Equal(t, "app", h.Logger.Prefix)
	assert.Nil(t, h.DB, "untagged fields are left alone")
	assert.Same(t, fixed, h.Fixed)
}
