package relay

import "strconv"

// Message is one outbound telemetry line: a fixed number of float fields.
// The client decodes positionally, so every position is always present,
// defaulting to zero.
type Message []float64

func NewMessage(fieldCount int) Message {
	return make(Message, fieldCount)
}

// Encode renders the fields as text, single-space separated, no trailing
// separator. A trailing '\n' is appended when newline is set.
func (m Message) Encode(newline bool) []byte {
	buf := make([]byte, 0, len(m)*8)
	for i, f := range m {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendFloat(buf, f, 'f', -1, 64)
	}
	if newline {
		buf = append(buf, '\n')
	}
	return buf
}
