package diag_test

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReport(t *testing.T) {
	Convey("Given a report", t, func() {
		r := &diag.Report{}
		loc := diag.Location{File: "zavod1.xlsx", Sheet: "Výsledky", Row: 12}

		Convey("When diagnostics of each severity are raised", func() {
			diag.Infof(r, loc, diag.CodePositionUnparsed, "Position '%s' is not a number", "x")
			diag.Warnf(r, loc, diag.CodeBirthYearRange, "Birth year %d is out of range", 1950)
			diag.Errorf(r, diag.Location{}, diag.CodeNameFormat, "bad name")

			Convey("Then they are kept in emission order", func() {
				got := r.Diagnostics()
				So(got, ShouldHaveLength, 3)
				So(got[0].Severity, ShouldEqual, diag.Info)
				So(got[1].Message, ShouldEqual, "Birth year 1950 is out of range")
				So(got[2].Code, ShouldEqual, diag.CodeNameFormat)
				So(r.HasErrors(), ShouldBeTrue)
				So(r.Count(diag.Warning), ShouldEqual, 1)
			})

			Convey("And the rendered message carries the location", func() {
				got := r.Diagnostics()
				So(got[1].String(), ShouldEqual, "WARNING: Birth year 1950 is out of range @zavod1.xlsx[Výsledky]:12")
				So(got[2].String(), ShouldEqual, "ERROR: bad name")
			})

			Convey("And flushing forwards and empties the buffer", func() {
				dst := &diag.Report{}
				r.FlushTo(dst)
				So(dst.Len(), ShouldEqual, 3)
				So(r.Len(), ShouldEqual, 0)
			})
		})

		Convey("When reporters are combined", func() {
			var seen []string
			m := diag.Multi{r, nil, diag.ReporterFunc(func(d diag.Diagnostic) { seen = append(seen, d.Code) })}
			diag.Warnf(m, loc, diag.CodeSimilarNames, "similar")
			So(r.Len(), ShouldEqual, 1)
			So(seen, ShouldResemble, []string{diag.CodeSimilarNames})
		})

		Convey("When many goroutines report at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					diag.Infof(r, loc, "x", "n")
				}()
			}
			wg.Wait()
			So(r.Len(), ShouldEqual, 20)
		})

		Convey("When reporting to nil or Discard", func() {
			So(func() { diag.Warnf(nil, loc, "x", "y") }, ShouldNotPanic)
			So(func() { diag.Warnf(diag.Discard, loc, "x", "y") }, ShouldNotPanic)
		})
	})
}

func TestSeverity(t *testing.T) {
	Convey("Given severity names", t, func() {
		for _, name := range []string{"info", "WARN", "warning", "Error"} {
			_, err := diag.ParseSeverity(name)
			So(err, ShouldBeNil)
		}
		_, err := diag.ParseSeverity("fatal")
		So(err, ShouldNotBeNil)
	})

	Convey("Given a diagnostic encoded as JSON", t, func() {
		b, err := json.Marshal(diag.Diagnostic{Severity: diag.Warning, Code: "c", Message: "m"})
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, `"severity":"warning"`)

		var back diag.Diagnostic
		So(json.Unmarshal(b, &back), ShouldBeNil)
		So(back.Severity, ShouldEqual, diag.Warning)
	})
}

func TestLogSink(t *testing.T) {
	Convey("Given a log sink over a buffered logger", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithOutput(&buf)), ShouldBeNil)
		sink := diag.NewLogSink(logger.Get())

		Convey("When diagnostics are reported", func() {
			diag.Warnf(sink, diag.Location{File: "z1.xlsx", Sheet: "H", Row: 7}, diag.CodeBirthYearRange, "out of range")
			diag.Errorf(sink, diag.Location{}, diag.CodeSource, "missing sheet")

			Convey("Then each is logged at its level with its location", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "level=WARN")
				So(out, ShouldContainSubstring, "file=z1.xlsx")
				So(out, ShouldContainSubstring, "row=7")
				So(out, ShouldContainSubstring, "level=ERROR")
				So(out, ShouldContainSubstring, "code=source")
			})
		})
	})
}
