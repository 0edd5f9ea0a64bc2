package analysislog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/analysislog"
)

func TestCollectorRecordsInEmissionOrder(t *testing.T) {
	c := analysislog.NewCollector()
	c.Errorf("a.ts", analysislog.CodeParseFailed, "bad token %q", "x")
	c.Warnf("a.ts", analysislog.CodeSnippetAmbiguous, "ambiguous")
	c.Infof("b.ts", analysislog.CodeRewriteOnEmptyField, "info %d", 1)
	c.Debugf("b.ts", analysislog.CodeCancelled, "debug")

	records := c.Records()
	require.Len(t, records, 4)

	assert.Equal(t, analysislog.LevelError, records[0].Level)
	assert.Equal(t, analysislog.CodeParseFailed, records[0].Code)
	assert.Equal(t, `bad token "x"`, records[0].Message)
	assert.Equal(t, "a.ts", records[0].SourceFile)

	assert.Equal(t, analysislog.LevelWarn, records[1].Level)
	assert.Equal(t, analysislog.LevelInfo, records[2].Level)
	assert.Equal(t, analysislog.LevelDebug, records[3].Level)
}

func TestLevelStringRendersKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "error", analysislog.LevelError.String())
	assert.Equal(t, "warn", analysislog.LevelWarn.String())
	assert.Equal(t, "info", analysislog.LevelInfo.String())
	assert.Equal(t, "debug", analysislog.LevelDebug.String())
	assert.Equal(t, "level(999)", analysislog.Level(999).String())
}

func TestCollectorImplementsSink(t *testing.T) {
	var sink analysislog.Sink = analysislog.NewCollector()
	sink.Log(analysislog.Record{Level: analysislog.LevelInfo, Message: "hi"})

	c := sink.(*analysislog.Collector)
	require.Len(t, c.Records(), 1)
	assert.Equal(t, "hi", c.Records()[0].Message)
}
