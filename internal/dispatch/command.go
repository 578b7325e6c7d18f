package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/revisit/internal/review"
	"github.com/at-ishikawa/revisit/internal/validation"
)

type Type string

const (
	TypeAdd           Type = "add"
	TypeAddSubject    Type = "addSubject"
	TypeRemove        Type = "remove"
	TypeUpdate        Type = "update"
	TypeUpdateSubject Type = "updateSubject"
	TypeMove          Type = "move"
	TypeMoveSubject   Type = "moveSubject"
	TypeComplete      Type = "complete"
)

// Command is a single user intent. Which fields are read depends on Type:
//
//	add            SubjectID (optional)
//	addSubject     -
//	remove         ID
//	update         ID, Item
//	updateSubject  ID, Subject
//	move           ID, Index
//	moveSubject    ID, Index
//	complete       ID, NextInterval
type Command struct {
	Type         Type                 `json:"type"`
	ID           string               `json:"id,omitempty"`
	SubjectID    string               `json:"subjectId,omitempty"`
	Index        *int                 `json:"index,omitempty"`
	NextInterval int                  `json:"nextInterval,omitempty"`
	Item         *review.ItemPatch    `json:"item,omitempty"`
	Subject      *review.SubjectPatch `json:"subject,omitempty"`
}

// ReplaceRequest carries a whole new state and the state it was prepared from.
type ReplaceRequest struct {
	Base  review.State `json:"base"`
	State review.State `json:"state"`
}

type addPayload struct {
	SubjectID string `json:"subjectId"`
}

type idPayload struct {
	ID string `json:"id" validate:"required"`
}

type updatePayload struct {
	ID   string            `json:"id" validate:"required"`
	Item *review.ItemPatch `json:"item" validate:"required"`
}

type updateSubjectPayload struct {
	ID      string               `json:"id" validate:"required"`
	Subject *review.SubjectPatch `json:"subject" validate:"required"`
}

type movePayload struct {
	ID    string `json:"id" validate:"required"`
	Index *int   `json:"index" validate:"required"`
}

type completePayload struct {
	ID           string `json:"id" validate:"required"`
	NextInterval int    `json:"nextInterval" validate:"gte=1"`
}

// payload returns the fields the command type reads, for validation.
func (cmd Command) payload() (any, error) {
	switch cmd.Type {
	case TypeAdd:
		return addPayload{SubjectID: cmd.SubjectID}, nil
	case TypeAddSubject:
		return nil, nil
	case TypeRemove:
		return idPayload{ID: cmd.ID}, nil
	case TypeUpdate:
		return updatePayload{ID: cmd.ID, Item: cmd.Item}, nil
	case TypeUpdateSubject:
		return updateSubjectPayload{ID: cmd.ID, Subject: cmd.Subject}, nil
	case TypeMove, TypeMoveSubject:
		return movePayload{ID: cmd.ID, Index: cmd.Index}, nil
	case TypeComplete:
		return completePayload{ID: cmd.ID, NextInterval: cmd.NextInterval}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command type %q", review.ErrInvalidCommand, cmd.Type)
	}
}

type commandValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newCommandValidator() (*commandValidator, error) {
	validate, trans, err := validation.New("json")
	if err != nil {
		return nil, fmt.Errorf("validation.New() > %w", err)
	}
	return &commandValidator{validate: validate, trans: trans}, nil
}

func (v *commandValidator) check(cmd Command) error {
	payload, err := cmd.payload()
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	if err := v.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %s: %s", review.ErrInvalidCommand, cmd.Type,
			strings.Join(validation.Messages(err, v.trans), ", "))
	}
	return nil
}

// DecodeCommand reads one JSON command. Unknown fields and malformed JSON are invalid commands.
func DecodeCommand(r io.Reader) (Command, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var cmd Command
	if err := decoder.Decode(&cmd); err != nil {
		if errors.Is(err, io.EOF) {
			return Command{}, fmt.Errorf("%w: empty body", review.ErrInvalidCommand)
		}
		return Command{}, fmt.Errorf("%w: %v", review.ErrInvalidCommand, err)
	}
	return cmd, nil
}
