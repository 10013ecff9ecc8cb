package config

import "os"

// defaultCHeader is the runtime shim prepended to every case source before
// the reference compile. It supplies the getint built-in the SysY runtime
// provides on MIPS.
const defaultCHeader = `#include <stdio.h>
#include <stdlib.h>

int getint() {
    int x;
    scanf("%d", &x);
    return x;
}

`

// CHeader returns the reference runtime shim, honoring the C_HEADER_FILE
// override. An unreadable override falls back to the built-in shim.
func CHeader() string {
	if path := os.Getenv("C_HEADER_FILE"); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			return string(raw)
		}
	}
	return defaultCHeader
}
