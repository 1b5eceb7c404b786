package trace

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTargets(t *testing.T) {
	require.Equal(t, Parser, ParseTargets("parser"))
	require.Equal(t, Parser|Delta, ParseTargets("Parser, delta"))
	require.Equal(t, Indexer, ParseTargets("indexer, bogus"))
	require.Equal(t, Target(0), ParseTargets(""))
}

func TestReadEnv(t *testing.T) {
	t.Setenv("GITPACK_TRACE_PARSER", "true")
	t.Setenv("GITPACK_TRACE_INDEXER", "")
	t.Setenv("GITPACK_TRACE_DELTA", "")
	t.Setenv("GITPACK_TRACE_ALL", "")
	require.Equal(t, Parser, readEnv())
}

func TestReadEnv_All(t *testing.T) {
	t.Setenv("GITPACK_TRACE_ALL", "1")
	t.Setenv("GITPACK_TRACE_PARSER", "")
	require.Equal(t, Parser|Indexer|Delta, readEnv())
}

func TestTarget_PrintOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	orig := logger
	defer func() { logger = orig }()
	SetLogger(log.New(&buf, "", 0))
	defer SetTarget(0)

	SetTarget(0)
	Delta.Print("should not appear")
	require.Empty(t, buf.String())

	SetTarget(Delta)
	Delta.Printf("result=%d", 5)
	require.Contains(t, buf.String(), "result=5")
}
