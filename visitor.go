// Copyright (c) 2025 Neomantra Corp

package avro

import "io"

// Visitor receives decoded records during a driven scan.
type Visitor interface {
	OnValue(value Value) error

	OnStreamEnd() error
}

// Visit scans the remainder of the stream, passing each record to the
// Visitor.  OnStreamEnd fires on normal exhaustion; errors from the
// scanner or the Visitor are returned as-is.
func (s *OcfScanner) Visit(visitor Visitor) error {
	for s.Next() {
		if err := visitor.OnValue(s.Value()); err != nil {
			return err
		}
	}
	if err := s.Error(); err != nil && err != io.EOF {
		return err
	}
	return visitor.OnStreamEnd()
}
