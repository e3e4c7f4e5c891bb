package fixture

import "fmt"

// TextNamespace is the namespace of the string host.
const TextNamespace = "demo:fixture/text@1.0.0"

// TextHost demonstrates string crossings and optional parameters.
type TextHost struct{}

func (h *TextHost) Namespace() string { return TextNamespace }

// Greet builds a greeting for name.
func (h *TextHost) Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

// GreetOptional greets name when present and a stranger otherwise.
func (h *TextHost) GreetOptional(name *string) string {
	if name == nil {
		return "Hello, stranger!"
	}
	return fmt.Sprintf("Hello, %s!", *name)
}
