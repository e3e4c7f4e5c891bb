package fixture

import "fmt"

// PersonNamespace is the namespace of the record host.
const PersonNamespace = "demo:fixture/person@1.0.0"

// Person is the fixture's record type. It crosses the boundary as
// {"name": ..., "age": ...}.
type Person struct {
	Name string
	Age  uint32
}

// PersonHost demonstrates record crossings in both directions.
type PersonHost struct{}

func (h *PersonHost) Namespace() string { return PersonNamespace }

// CreatePerson builds a Person natively and returns it to the host.
func (h *PersonHost) CreatePerson(name string, age uint32) Person {
	return Person{Name: name, Age: age}
}

// DescribePerson renders a host-supplied Person.
func (h *PersonHost) DescribePerson(p Person) string {
	return fmt.Sprintf("%s is %d years old", p.Name, p.Age)
}
