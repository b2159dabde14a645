package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

const serviceName = "ideora-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared line-oriented logger every package writes
// JSON entries through.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one JSON log line. Timestamp, level and service are
// stamped here, so call sites carry only request-specific fields such
// as the request id computed by the HTTP middleware.
func LogRequest(entry map[string]any) {
	stamped := make(map[string]any, len(entry)+3)
	for k, v := range entry {
		stamped[k] = v
	}
	stamped["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	stamped["service"] = serviceName
	if _, ok := stamped["level"]; !ok {
		stamped["level"] = "info"
	}

	data, err := json.Marshal(stamped)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
