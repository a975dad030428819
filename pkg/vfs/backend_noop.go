package vfs

import "errors"

// errNoop is returned by every NoopBackend operation.
var errNoop = errors.New("vfs: noop backend does not perform operations")

// NoopBackend is a Backend that fails every operation and never produces
// events. It satisfies the Backend interface without touching any real or
// simulated filesystem; nothing in this repository constructs one.
type NoopBackend struct {
	events chan Event
	errors chan error
}

// NewNoopBackend creates a NoopBackend.
func NewNoopBackend() *NoopBackend {
	return &NoopBackend{
		events: make(chan Event),
		errors: make(chan error),
	}
}

func (NoopBackend) FileType(string) (Kind, error)         { return 0, errNoop }
func (NoopBackend) ReadDir(string) ([]string, error)      { return nil, errNoop }
func (NoopBackend) Read(string) ([]byte, error)           { return nil, errNoop }
func (NoopBackend) Write(string, []byte) error            { return errNoop }
func (NoopBackend) CreateDir(string) error                { return errNoop }
func (NoopBackend) CreateDirAll(string) error              { return errNoop }
func (NoopBackend) RemoveFile(string) error                { return errNoop }
func (NoopBackend) RemoveDirAll(string) error               { return errNoop }
func (NoopBackend) Canonicalize(string) (string, error)    { return "", errNoop }
func (NoopBackend) Watch(string) error                      { return errNoop }
func (NoopBackend) Unwatch(string) error                    { return errNoop }
func (b *NoopBackend) Events() <-chan Event                 { return b.events }
func (b *NoopBackend) Errors() <-chan error                 { return b.errors }
func (NoopBackend) Close() error                             { return nil }
