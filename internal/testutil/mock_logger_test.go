package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
	assert.Equal(t, 1, logger.CountLevel("error"))
}

func TestMockLogger_ChildrenShareRecorder(t *testing.T) {
	logger := testutil.NewMockLogger()

	child := logger.Named("cml").Named("import").With(logging.MoleculeID("m1"))
	child.Warn("missing coordinates", logging.AtomID("a1"))

	ctxChild := logger.WithContext(logging.ContextWithOperationID(context.Background(), "op-1"))
	ctxChild.WithError(errors.New("boom")).Error("failed")

	messages := logger.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "cml.import", messages[0].Logger)
	mol, _ := messages[0].Field("molecule_id")
	atom, _ := messages[0].Field("atom_id")
	assert.Equal(t, "m1", mol)
	assert.Equal(t, "a1", atom)

	op, _ := messages[1].Field("operation_id")
	assert.Equal(t, "op-1", op)
	_, hasErr := messages[1].Field("error")
	assert.True(t, hasErr)
}

func TestMockLogger_SatisfiesInterface(t *testing.T) {
	var l logging.Logger = testutil.NewMockLogger()
	assert.NoError(t, l.Sync())
}
