package document

import (
	"permit-report/src/pkg/report"
	"permit-report/src/pkg/util"
)

// Row is one data row of the document, keeping the region key for merging.
type Row struct {
	RegionKey  string
	RegionCode string
	Locality   string
	Values     []int64
}

// Rows flattens a report into document rows in region order.
func Rows(built report.Report) (rows []Row) {
	view := report.Table(built)
	for _, tableRegion := range view.Regions {
		for _, tableRow := range tableRegion.Rows {
			rows = append(rows, Row{
				RegionKey:  tableRegion.Key,
				RegionCode: tableRegion.DisplayCode,
				Locality:   tableRow.Locality,
				Values:     tableRow.Values,
			})
		}
	}
	return rows
}

/*
Paginate splits rows into page chunks: the first holds capacity.First rows,
every later one capacity.Next. No rows still give one (empty) page so the
document can carry its zero grand total.
*/
func Paginate(rows []Row, capacity report.Capacity) (chunks [][]Row) {
	first, next := capacity.First, capacity.Next
	if next <= 0 {
		next = len(rows)
	}
	if first <= 0 {
		first = next
	}
	if len(rows) == 0 || first <= 0 {
		return [][]Row{rows}
	}

	size := first
	for start := 0; start < len(rows); start += size {
		if start > 0 {
			size = next
		}
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

/*
ExportJob tracks one document export: its page chunks and the percentage of
pages rasterized so far.
*/
type ExportJob struct {
	Chunks   [][]Row
	Progress int
}

// NewExportJob paginates a report with its kind's capacity.
func NewExportJob(built report.Report) ExportJob {
	return ExportJob{Chunks: Paginate(Rows(built), built.Kind.Capacity)}
}

// PageCount is the number of chunks.
func (job ExportJob) PageCount() int {
	return len(job.Chunks)
}

// IsLast reports whether index is the final chunk.
func (job ExportJob) IsLast(index int) bool {
	return index == len(job.Chunks)-1
}

// Complete records that the page at index is done and returns the new percentage.
func (job *ExportJob) Complete(index int) int {
	job.Progress = util.Percent(index+1, len(job.Chunks))
	return job.Progress
}
