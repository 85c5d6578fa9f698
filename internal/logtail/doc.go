// Package logtail reads tote's own log file for the Activity view and the
// `tote log` command.
//
// # Overview
//
// Every mutation tote dispatches is logged (started, confirmed, failed) along
// with refresh results. logtail turns the tail of that file back into
// something a person can scan.
//
// # Reading
//
// Read uses a ring buffer to keep the last maxLines of a file in one
// sequential pass, using O(maxLines) memory regardless of file size:
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// A missing file is not an error; it yields no lines.
//
// # Parsing
//
// Parse decodes the JSON records written by the logging package. It picks out
// the fields the mutation dispatcher attaches (op, entity, kind, error).
// Lines that are not JSON, e.g. when log_format = "console", are kept raw and
// Format returns them unchanged.
//
//	for _, e := range entries {
//		if e.Failure() {
//			// highlight
//		}
//		fmt.Println(logtail.Format(e))
//	}
package logtail
