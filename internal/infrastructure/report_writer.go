package infrastructure

import (
	"bufio"
	"crewopt/internal/domain"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type FmtFunc func(float64) string

// DecimalFormatter formats values with a fixed number of decimals.
func DecimalFormatter(decimals int) FmtFunc {
	return func(val float64) string {
		return strconv.FormatFloat(val, 'f', decimals, 64)
	}
}

// TXTReportWriter writes tab separated optimization reports
type TXTReportWriter struct {
	logger    *zap.Logger
	formatter FmtFunc
}

func NewTXTReportWriter(logger *zap.Logger, formatter FmtFunc) *TXTReportWriter {
	return &TXTReportWriter{logger: logger, formatter: formatter}
}

func (w *TXTReportWriter) WriteReport(filename string, result *domain.OptimizationResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := w.Write(file, result); err != nil {
		return err
	}

	w.logger.Info("Report written", zap.String("file", filename))
	return nil
}

// Write emits the metrics table, one row per crew size, followed by the
// state probability table.
func (w *TXTReportWriter) Write(out io.Writer, result *domain.OptimizationResult) error {
	writer := bufio.NewWriter(out)

	p := result.Parameters
	fmt.Fprintf(writer, "# N=%d\tlambda=%s\tmu=%s\tcost_broken=%s\tcost_repairer=%s\n",
		p.Population, w.formatter(p.FailureRate), w.formatter(p.ServiceRate),
		w.formatter(result.Weights.BrokenMachineHour), w.formatter(result.Weights.RepairerHour))

	fmt.Fprintln(writer, strings.Join([]string{"c", "P0", "L", "Lq", "W", "Wq", "utilization", "cost", "optimal"}, "\t"))
	for _, c := range result.Candidates {
		if c.Err != nil {
			fmt.Fprintf(writer, "%d\terror: %s\n", c.Crew, c.Err)
			continue
		}
		m := c.Metrics
		row := []string{
			strconv.Itoa(c.Crew),
			w.formatter(c.BaseProbability),
			w.formatter(m.SystemLength),
			w.formatter(m.QueueLength),
			w.formatter(m.SystemTime),
			w.formatter(m.QueueTime),
			w.formatter(m.Utilization),
			w.formatter(m.Cost),
			marker(result.Optimal != nil && result.Optimal.Crew == c.Crew),
		}
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}

	fmt.Fprintln(writer)
	header := []string{"c"}
	for n := 0; n <= p.Population; n++ {
		header = append(header, "P"+strconv.Itoa(n))
	}
	fmt.Fprintln(writer, strings.Join(header, "\t"))
	for _, c := range result.Candidates {
		if c.Err != nil {
			continue
		}
		row := []string{strconv.Itoa(c.Crew)}
		for _, pn := range c.Distribution {
			row = append(row, w.formatter(pn))
		}
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}

	return writer.Flush()
}

func marker(optimal bool) string {
	if optimal {
		return "*"
	}
	return ""
}
