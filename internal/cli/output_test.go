package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artkeep/artkeep/internal/result"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))

	// Wrapped exit errors keep their code.
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
	assert.Equal(t, "open data: permission denied",
		WrapExitError(ExitCommandError, "open data", errors.New("permission denied")).Error())
}

func TestResultError(t *testing.T) {
	err := ResultError(result.ItemNotClosable, "close item")
	assert.Equal(t, ExitFailure, err.Code)
	assert.Equal(t, "close item: ITEM_NOT_CLOSABLE", err.Error())
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, out.Success(result.Success, map[string]string{"code": "56"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "SUCCESS", resp.Result)
	assert.Equal(t, map[string]interface{}{"code": "56"}, resp.Data)
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, out.Successf("added item %s", "56"))
	assert.Equal(t, "added item 56\n", buf.String())

	// A non-success result is reported on its own line.
	buf.Reset()
	require.NoError(t, out.Success(result.PartialSuccess, "rates updated"))
	assert.Equal(t, "rates updated\nPARTIAL_SUCCESS\n", buf.String())
}

func TestRootCommandRejectsUnknownFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "items", "list"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
