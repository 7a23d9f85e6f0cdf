package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// duration understands Go durations ("90s", "1m30s") as well as a bare
// number of seconds.  The empty string is no timeout at all.
func duration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	re := regexp.MustCompile(`^(\d+)$`)
	if m := re.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseUint(m[1], 10, 0)
		if err != nil {
			return 0, err
		}
		return time.Second * time.Duration(v), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("unrecognized timeout '%s'", s)
	}
	return d, nil
}

// siteArgs splits SITE [LOGIN] off of the positional arguments.
func siteArgs(command string, args []string) (string, string, error) {
	switch len(args) {
	case 1:
		return args[0], "", nil
	case 2:
		return args[0], args[1], nil
	}
	return "", "", fmt.Errorf("USAGE: %s site [login]", command)
}

func shouldDebug() bool {
	d := strings.ToLower(os.Getenv("DEBUG"))
	return d != "" && d != "false" && d != "0" && d != "no" && d != "off"
}
