package modeling

// An Address points at a key of a component. A nil Component or an empty Key
// is a wildcard.
type Address struct {
	Component Component
	Key       Key
}

// At returns the address of a key of a component.
func At(c Component, k Key) Address {
	return Address{Component: c, Key: k}
}

// AnyKeyOf returns an address that matches every key of the component.
func AnyKeyOf(c Component) Address {
	return Address{Component: c}
}

// Matches tells if the address refers to the given component and key. Fields
// that are not set match anything.
func (a Address) Matches(c Component, k Key) bool {
	if a.Component != nil && a.Component != c {
		return false
	}

	if a.Key != "" && a.Key != k {
		return false
	}

	return true
}

// IsConcrete tells if both fields are set.
func (a Address) IsConcrete() bool {
	return a.Component != nil && a.Key != ""
}

// String renders the address as Name:Key, with * for wildcards.
func (a Address) String() string {
	name := "*"
	if a.Component != nil {
		name = a.Component.Name()
	}

	key := "*"
	if a.Key != "" {
		key = string(a.Key)
	}

	return name + ":" + key
}
