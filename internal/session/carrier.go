// Package session keeps the credentials of logged-in dashboard users on the
// server side. Browsers only ever hold a signed token naming a session.
package session

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when a request carries no usable session.
var ErrNoSession = errors.New("no active session")

// Carrier holds the credentials of one browser session. It is immutable
// and never rendered in logs or JSON.
type Carrier struct {
	username string
	password string
}

func NewCarrier(username, password string) *Carrier {
	return &Carrier{username: username, password: password}
}

func (c *Carrier) Username() string {
	return c.username
}

func (c *Carrier) Password() string {
	return c.password
}

func (c *Carrier) String() string {
	return "session.Carrier{redacted}"
}

func (c *Carrier) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(c.String()))
}

func (c *Carrier) MarshalJSON() ([]byte, error) {
	return []byte(`"redacted"`), nil
}
