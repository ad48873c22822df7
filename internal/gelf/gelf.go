package gelf

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

// Writer sends GELF messages over UDP. It expects each Write to carry one
// JSON-encoded zap entry and implements zapcore.WriteSyncer so it can be
// tee'd next to the stdout core.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "dms-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// syslog severities keyed by zap level names.
var levels = map[string]int{
	"debug":  7,
	"info":   6,
	"warn":   4,
	"error":  3,
	"dpanic": 2,
	"panic":  2,
	"fatal":  2,
}

// Write implements io.Writer. Each call sends one GELF message. Extra zap
// fields become GELF additional fields with a leading underscore.
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := w.encode(p)
	if err != nil {
		return len(p), nil // don't fail the log call
	}

	// Fire-and-forget
	w.conn.Write(payload)
	return len(p), nil
}

func (w *Writer) encode(p []byte) ([]byte, error) {
	var entry map[string]interface{}
	if err := json.Unmarshal(p, &entry); err != nil {
		return nil, err
	}

	msg := map[string]interface{}{
		"version":  "1.1",
		"host":     w.hostname,
		"level":    6,
		"_service": w.service,
	}
	short, _ := entry["msg"].(string)
	msg["short_message"] = short
	if lvl, ok := entry["level"].(string); ok {
		if sev, known := levels[lvl]; known {
			msg["level"] = sev
		}
	}
	msg["timestamp"] = float64(time.Now().UnixNano()) / 1e9

	for k, v := range entry {
		switch k {
		case "msg", "level", "timestamp", "ts":
			continue
		case "id":
			// "_id" is reserved by GELF.
			k = "field_id"
		}
		msg["_"+k] = flatten(v)
	}
	return json.Marshal(msg)
}

// GELF additional fields must be strings or numbers.
func flatten(v interface{}) interface{} {
	switch t := v.(type) {
	case string, float64:
		return t
	case bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func (w *Writer) Sync() error { return nil }

func (w *Writer) Close() error { return w.conn.Close() }
