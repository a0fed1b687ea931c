package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommand struct {
	Fail bool
}

func (c fakeCommand) Validate() error {
	if c.Fail {
		return errors.New("invalid")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBus_DispatchesByType(t *testing.T) {
	b := NewCommandBus()
	var handled bool
	require.NoError(t, b.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled = true
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), fakeCommand{}))
	assert.True(t, handled)
}

func TestCommandBus_ValidatesBeforeDispatch(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		t.Fatal("handler must not run for an invalid command")
		return nil
	})))

	err := b.Send(context.Background(), fakeCommand{Fail: true})
	assert.Error(t, err)
}

func TestCommandBus_UnregisteredCommand(t *testing.T) {
	b := NewCommandBus()

	err := b.Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_DoubleRegistration(t *testing.T) {
	b := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(fakeCommand{}, handler))
	assert.Error(t, b.Register(fakeCommand{}, handler))
}
