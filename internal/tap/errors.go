package tap

import "fmt"

// DeviceError is a failure of the tap device or of the link behind it.
type DeviceError struct {
	Name string
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("tap %s: %s: %v", e.Name, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func newDeviceError(name, op string, err error) error {
	return &DeviceError{Name: name, Op: op, Err: err}
}
