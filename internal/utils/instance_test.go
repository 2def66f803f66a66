package utils

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceIDFromMAC(t *testing.T) {
	mac, _ := net.ParseMAC("00:1a:2b:3c:4d:5e")
	ifaces := func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			{Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac},
		}, nil
	}
	noHost := func() (string, error) { return "", errors.New("no hostname") }

	id := instanceID(ifaces, noHost)
	assert.Regexp(t, `^ERP-[0-9A-F]{8}$`, id)
	assert.Equal(t, id, instanceID(ifaces, noHost))
}

func TestInstanceIDFallsBackToHostname(t *testing.T) {
	noIfaces := func() ([]net.Interface, error) { return nil, errors.New("denied") }

	a := instanceID(noIfaces, func() (string, error) { return "press-room", nil })
	b := instanceID(noIfaces, func() (string, error) { return "front-desk", nil })
	assert.Regexp(t, `^ERP-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)

	assert.Equal(t, unknownInstance, instanceID(noIfaces, func() (string, error) { return "", errors.New("x") }))
}
