//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/testutil"
)

// TestServerFlow drives find, redact, tokenize, and detokenize through the
// HTTP API in sequence, feeding each response into the next request.
func TestServerFlow(t *testing.T) {
	ts, _ := testutil.StartServer(t)

	status, body := postJSON(t, ts.URL+"/v1/find", fmt.Sprintf(`{"text":%q}`, testutil.MixedText))
	require.Equal(t, http.StatusOK, status, body)
	var found detect.FindResult
	require.NoError(t, json.Unmarshal([]byte(body), &found))
	require.Len(t, found.Matches, 2)

	status, body = postJSON(t, ts.URL+"/v1/redact", fmt.Sprintf(`{"text":%q,"strategy":"mask"}`, testutil.MixedText))
	require.Equal(t, http.StatusOK, status, body)
	var red detect.RedactionResult
	require.NoError(t, json.Unmarshal([]byte(body), &red))
	assert.Equal(t, "Reach me at 010-****-**** or ****@****.***", red.Redacted)

	status, body = postJSON(t, ts.URL+"/v1/tokenize", fmt.Sprintf(`{"text":%q}`, testutil.MixedText))
	require.Equal(t, http.StatusOK, status, body)
	var tok struct {
		Text   string            `json:"text"`
		Tokens map[string]string `json:"tokens"`
		Digest string            `json:"digest"`
		Count  int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &tok))
	assert.Equal(t, 2, tok.Count)
	assert.NotContains(t, tok.Text, "jane@example.com")

	detokReq, err := json.Marshal(map[string]interface{}{
		"text":   tok.Text,
		"tokens": tok.Tokens,
		"digest": tok.Digest,
	})
	require.NoError(t, err)
	status, body = postJSON(t, ts.URL+"/v1/detokenize", string(detokReq))
	require.Equal(t, http.StatusOK, status, body)
	var detok struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &detok))
	assert.Equal(t, testutil.MixedText, detok.Text)
}

// TestServerReloadFlow changes the rule source on disk and reloads it
// through the API without restarting the server.
func TestServerReloadFlow(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteRuleFile(t, dir, "rules.yml", testutil.BadgeRules)
	ts, _ := testutil.StartServer(t, path)

	status, body := postJSON(t, ts.URL+"/v1/find", `{"text":"open GATE-123456"}`)
	require.Equal(t, http.StatusOK, status, body)
	var before detect.FindResult
	require.NoError(t, json.Unmarshal([]byte(body), &before))
	assert.Empty(t, before.Matches)

	testutil.WriteRuleFile(t, dir, "rules.yml", gateRules)
	status, body = postJSON(t, ts.URL+"/v1/rules/reload", `{}`)
	require.Equal(t, http.StatusOK, status, body)
	var reloaded struct {
		Status  string `json:"status"`
		Rules   int    `json:"rules"`
		Version int    `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &reloaded))
	assert.Equal(t, "reloaded", reloaded.Status)
	assert.Equal(t, 2, reloaded.Rules)

	status, body = postJSON(t, ts.URL+"/v1/find", `{"text":"open GATE-123456"}`)
	require.Equal(t, http.StatusOK, status, body)
	var after detect.FindResult
	require.NoError(t, json.Unmarshal([]byte(body), &after))
	require.Len(t, after.Matches, 1)
	assert.Equal(t, "custom/gate_01", after.Matches[0].RuleID)
}

// TestStreamSession sends several frames over the websocket endpoint and
// collects the per-frame results, which may arrive out of order.
func TestStreamSession(t *testing.T) {
	ts, _ := testutil.StartServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	inputs := []string{testutil.MixedText, testutil.CleanText, testutil.CardText}
	for _, in := range inputs {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(in)))
	}

	counts := make(map[int]int, len(inputs))
	for range inputs {
		var frame struct {
			Index  int                `json:"index"`
			Result *detect.FindResult `json:"result"`
			Error  string             `json:"error"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		require.Empty(t, frame.Error)
		require.NotNil(t, frame.Result)
		counts[frame.Index] = len(frame.Result.Matches)
	}

	assert.Equal(t, map[int]int{0: 2, 1: 0, 2: 1}, counts)
}
