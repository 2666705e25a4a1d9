package config

import (
	"fmt"
	"os"
)

func Template() string {
	return clientTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(clientTemplate), 0o600)
}

const clientTemplate = `# Empty coqtop means: search $PATH for a coqtop reporting version 8.7.1.
coqtop = ""
# Appended verbatim after -ideslave -main-channel stdfds -async-proofs on.
args = []
timeout = "2s"
startup_timeout = "200ms"
max_startup_attempts = 5
read_chunk_size = 16384
backoff_initial = "50ms"
backoff_multiplier = 2.0
backoff_max = "1s"
backoff_jitter = true
metrics_addr = ""
`
