// Package histotail reads a histogram log while another process is still
// appending to it.
//
// A histogram log stores periodic snapshots of a fixed set of latency timers.
// The writer declares its timers once, in a header, and then appends one
// sample per period. A sample holds one HDR histogram per declared timer.
//
// Log format
//
// All integers are big-endian.
//
//	log := header sample*
//	header :=
//	  timerCount: int32
//	  timer[timerCount]
//	timer :=
//	  id: int32
//	  nameLength: int32
//	  name: uint8[nameLength]   // UTF-8
//	sample :=
//	  timestamp: int64          // milliseconds since the epoch, never 0
//	  record[timerCount]        // in header order
//	record :=
//	  id: int32
//	  histogram                 // HdrHistogram V2 encoding, see codec/hdr
//
// A writer may extend the file with zeros ahead of its write position. A zero
// timestamp therefore marks the end of the samples written so far, not the end
// of the log: the reader stops there and looks at the same offset again on the
// next read. Writers must write a sample's records before its timestamp.
//
// Readers map the file read-only and remap it whenever its size changes, so a
// single Reader can follow the log for as long as the writer runs. Any number
// of readers may follow the same log; they do not coordinate.
package histotail
