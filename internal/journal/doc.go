// Package journal reads the game client's event journal.
//
// The client writes one JSON object per line to Journal.<token>.log files in
// a single directory, starting a new file for each session. Locate picks the
// current file by name, Tailer follows it across rotation, and Decode turns
// each line into an Event whose Kind tells the projector what state it
// touches.
//
// Example usage:
//
//	t := journal.NewTailer(dir)
//	defer t.Close()
//
//	batch, err := t.Poll()
//	if err != nil {
//		return err
//	}
//	for _, line := range batch.Lines {
//		ev, err := journal.Decode(line)
//		...
//	}
package journal
