//go:build !windows

package window

type stubService struct{}

// NewService returns a non-functional service on non-Windows platforms.
func NewService() (Service, error) {
	return stubService{}, ErrUnsupported
}

// List returns ErrUnsupported.
func (stubService) List() ([]Info, error) {
	return nil, ErrUnsupported
}

// Focus returns ErrUnsupported.
func (stubService) Focus(Info) error {
	return ErrUnsupported
}
