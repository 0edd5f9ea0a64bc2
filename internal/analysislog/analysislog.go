// Package analysislog implements the AnalysisLog record described in
// spec §6: a leveled, sub-coded diagnostic stream emitted alongside match
// results. Modeled on the teacher's mcp/logging.go LogLevel/LogMessage
// pair, but with the spec's fixed numeric levels instead of MCP's named
// ones.
package analysislog

import "fmt"

// Level is one of the four severities the spec assigns fixed numbers to.
type Level int

const (
	LevelError Level = 200
	LevelWarn  Level = 300
	LevelInfo  Level = 400
	LevelDebug Level = 500
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Sub-codes referenced by the matcher and linearizer. Not exhaustive; new
// ones are added as a specific diagnostic needs to be distinguished by
// tooling rather than just read by a human.
const (
	CodeRewriteOnEmptyField = 441
	CodeSuppressedMatch     = 442
	CodeLinearizeOverlap    = 443
	CodeSnippetAmbiguous    = 444
	CodeCancelled           = 445
	CodeParseFailed         = 446
	CodeReadFailed          = 447
)

// Record is one AnalysisLog entry, correlated to a file and optionally a
// range within it.
type Record struct {
	Level      Level
	Code       int
	Message    string
	SourceFile string
	Range      *ByteRange
}

// ByteRange is a half-open [Start, End) byte interval into a source buffer.
type ByteRange struct {
	Start int
	End   int
}

// Sink receives Records as they are produced. Implementations must not
// block the matcher for long; the default Collector just appends.
type Sink interface {
	Log(Record)
}

// Collector is the in-memory Sink used by a single Problem run: it simply
// accumulates records in emission order for the host to drain after
// execute_files returns.
type Collector struct {
	records []Record
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Log(r Record) { c.records = append(c.records, r) }

func (c *Collector) Records() []Record { return c.records }

// Errorf logs a LevelError record with a formatted message.
func (c *Collector) Errorf(file string, code int, format string, args ...any) {
	c.Log(Record{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...), SourceFile: file})
}

// Warnf logs a LevelWarn record with a formatted message.
func (c *Collector) Warnf(file string, code int, format string, args ...any) {
	c.Log(Record{Level: LevelWarn, Code: code, Message: fmt.Sprintf(format, args...), SourceFile: file})
}

// Infof logs a LevelInfo record with a formatted message.
func (c *Collector) Infof(file string, code int, format string, args ...any) {
	c.Log(Record{Level: LevelInfo, Code: code, Message: fmt.Sprintf(format, args...), SourceFile: file})
}

// Debugf logs a LevelDebug record with a formatted message.
func (c *Collector) Debugf(file string, code int, format string, args ...any) {
	c.Log(Record{Level: LevelDebug, Code: code, Message: fmt.Sprintf(format, args...), SourceFile: file})
}
