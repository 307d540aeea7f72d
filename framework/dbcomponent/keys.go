package dbcomponent

// Container keys owned by the component.
const (
	ClientKey    = "database.client"
	OptionsKey   = "database.options"
	ComponentKey = "database.component"

	// MiddlewareExtensionPoint is the tag middleware bindings carry to be
	// attached to the client.
	MiddlewareExtensionPoint = "database.middleware"
)

// MiddlewareKey returns the binding key RegisterMiddleware uses for name.
func MiddlewareKey(name string) string {
	return MiddlewareExtensionPoint + "." + name
}

// ModelKey returns the binding key of the model accessor name under namespace.
func ModelKey(namespace, name string) string {
	return namespace + "." + name
}
