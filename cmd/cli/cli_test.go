package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkpad-online/notes/internal/config"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/pages"
	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/sessions"
	"github.com/thinkpad-online/notes/internal/testing/mockapi"
)

func setupTestState(t *testing.T) *mockapi.Server {
	t.Helper()

	fake := mockapi.New()
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	cfg = config.DefaultConfig()
	cfg.State.Path = t.TempDir()
	require.NoError(t, cfg.SetAPIEndpoint(server.URL))

	require.NoError(t, openState(context.Background()))
	t.Cleanup(func() { postRunCleanup(nil, nil) })

	return fake
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected outputFormat
		wantErr  bool
	}{
		{"", outputTable, false},
		{"TABLE", outputTable, false},
		{"json", outputJSON, false},
		{"yaml", outputYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		format, err := parseOutputFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, format)
	}
}

func TestWriteStructured(t *testing.T) {
	notes := []models.Note{
		{ID: "n1", Title: "Groceries", IsPublic: true},
		{ID: "n2", Title: "Diary"},
	}

	var out bytes.Buffer
	require.NoError(t, writeStructured(&out, outputJSON, notes, ".[] | select(.isPublic) | .title"))
	assert.Equal(t, "\"Groceries\"\n", out.String())

	out.Reset()
	require.NoError(t, writeStructured(&out, outputYAML, notes[:1], ""))
	assert.Contains(t, out.String(), "title: Groceries")
	assert.Contains(t, out.String(), "public: true")

	assert.Error(t, writeStructured(&out, outputJSON, notes, ".[] | "))
}

func TestPreviewContent(t *testing.T) {
	assert.Equal(t, "a b c", previewContent("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", previewContent("abcdefgh", 5))
}

func TestDescribeQuery(t *testing.T) {
	assert.Equal(t, "Showing 2 of 5 notes", describeQuery(2, 5, pages.Query{Filter: pages.FilterAll}))
	assert.Equal(t, `Showing 1 of 5 notes matching "milk" (public only)`,
		describeQuery(1, 5, pages.Query{Search: "milk", Filter: pages.FilterPublic}))
}

func TestRenderNavbar(t *testing.T) {
	guest := renderNavbar(sessions.Projection{}, false, router.Home)
	assert.Contains(t, guest, "Login")
	assert.NotContains(t, guest, "Dashboard")

	member := renderNavbar(sessions.Projection{Authenticated: true, DisplayName: "Ana"}, true, router.Notes)
	assert.Contains(t, member, "Ana")
	assert.Contains(t, member, "My Notes")
	assert.Contains(t, member, "dark")
	assert.NotContains(t, member, "Signup")
}

func TestShell_LoginFlowUpdatesPrompt(t *testing.T) {
	fake := setupTestState(t)
	fake.AddUser("Ana", "ana@example.com", "pw")

	prompt := mountPrompt(sessionStore)
	defer prompt.Close()
	assert.Equal(t, "thinkpad> ", prompt.String())

	require.NoError(t, loginCmd.Flags().Set("email", "ana@example.com"))
	require.NoError(t, loginCmd.Flags().Set("password", "pw"))
	defer loginCmd.Flags().Set("email", "")
	defer loginCmd.Flags().Set("password", "")

	require.NoError(t, runLogin(loginCmd, nil))

	assert.Equal(t, "thinkpad (Ana)> ", prompt.String())
	assert.Equal(t, router.Dashboard, nav.Current().Route)

	var out bytes.Buffer
	require.NoError(t, executeShellLine(context.Background(), &out, "logout"))
	assert.Equal(t, "thinkpad> ", prompt.String())
	assert.Equal(t, router.Home, nav.Current().Route)
}

func TestShell_Commands(t *testing.T) {
	setupTestState(t)
	var out bytes.Buffer

	assert.NoError(t, executeShellLine(context.Background(), &out, "   "))
	assert.NoError(t, executeShellLine(context.Background(), &out, "help"))
	assert.Contains(t, out.String(), "Commands:")

	assert.ErrorIs(t, executeShellLine(context.Background(), &out, "exit"), errQuit)
	assert.ErrorIs(t, executeShellLine(context.Background(), &out, "go /nowhere"), router.ErrUnknownRoute)
	assert.Error(t, executeShellLine(context.Background(), &out, "frobnicate"))
	assert.Error(t, executeShellLine(context.Background(), &out, "update"))

	out.Reset()
	require.NoError(t, executeShellLine(context.Background(), &out, "home"))
	assert.Contains(t, out.String(), "ThinkPad")
	assert.Equal(t, router.Home, nav.Current().Route)
}

func TestTheme_PersistsPreference(t *testing.T) {
	setupTestState(t)
	defer applyTheme(false)

	dark, err := setTheme("dark")
	require.NoError(t, err)
	assert.True(t, dark)
	assert.True(t, prefs.DarkMode())

	dark, err = setTheme("toggle")
	require.NoError(t, err)
	assert.False(t, dark)

	_, err = setTheme("sepia")
	assert.Error(t, err)
}

func TestExplainAPIError(t *testing.T) {
	setupTestState(t)

	_, err := client.ListNotes(context.Background())
	assert.ErrorIs(t, explainAPIError(err), errNotLoggedIn)
	assert.True(t, strings.Contains(errNotLoggedIn.Error(), "thinkpad login"))
}
