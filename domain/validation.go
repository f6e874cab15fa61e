package domain

import (
	"chat-relay/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the struct tags of an inbound command.
func Validate(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", errors.ErrInvalidCommand)
	}
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	return nil
}
