package form

// Iter is the interface implemented by types that implement disco form
// extensions.
type Iter interface {
	ForForms(node string, f func(*Data) error) error
}
