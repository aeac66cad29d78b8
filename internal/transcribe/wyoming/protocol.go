package wyoming

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// protocolVersion is sent in every header.
const protocolVersion = "1.5.2"

// event is a single Wyoming protocol message. On the wire each event is a
// JSON header line followed by the optional data and payload sections:
//
//	{"type": "...", "version": "...", "data_length": N, "payload_length": M}\n
//	<N bytes of JSON data><M bytes of payload>
//
// Peers may also inline data in the header under "data".
type event struct {
	Type string
	Data map[string]any
}

type header struct {
	Type          string         `json:"type"`
	Version       string         `json:"version,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	DataLength    int            `json:"data_length,omitempty"`
	PayloadLength int            `json:"payload_length,omitempty"`
}

func writeEvent(w io.Writer, evt event, payload []byte) error {
	var data []byte
	if len(evt.Data) > 0 {
		var err error
		if data, err = json.Marshal(evt.Data); err != nil {
			return fmt.Errorf("marshalling event data: %w", err)
		}
	}
	hdr, err := json.Marshal(header{
		Type:          evt.Type,
		Version:       protocolVersion,
		DataLength:    len(data),
		PayloadLength: len(payload),
	})
	if err != nil {
		return fmt.Errorf("marshalling event header: %w", err)
	}

	buf := make([]byte, 0, len(hdr)+1+len(data)+len(payload))
	buf = append(buf, hdr...)
	buf = append(buf, '\n')
	buf = append(buf, data...)
	buf = append(buf, payload...)
	_, err = w.Write(buf)
	return err
}

func readEvent(r *bufio.Reader) (event, []byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return event{}, nil, fmt.Errorf("reading header: %w", err)
	}

	var hdr header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return event{}, nil, fmt.Errorf("invalid wyoming header: %w", err)
	}
	if hdr.Type == "" {
		return event{}, nil, fmt.Errorf("invalid wyoming header: missing type")
	}
	if hdr.DataLength < 0 || hdr.PayloadLength < 0 {
		return event{}, nil, fmt.Errorf("invalid wyoming header: negative length")
	}

	evt := event{Type: hdr.Type, Data: hdr.Data}
	if hdr.DataLength > 0 {
		raw := make([]byte, hdr.DataLength)
		if _, err := io.ReadFull(r, raw); err != nil {
			return event{}, nil, fmt.Errorf("reading data: %w", err)
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return event{}, nil, fmt.Errorf("unmarshalling data: %w", err)
		}
		if evt.Data == nil {
			evt.Data = data
		} else {
			for k, v := range data {
				evt.Data[k] = v
			}
		}
	}

	var payload []byte
	if hdr.PayloadLength > 0 {
		payload = make([]byte, hdr.PayloadLength)
		if _, err := io.ReadFull(r, payload); err != nil {
			return event{}, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return evt, payload, nil
}
