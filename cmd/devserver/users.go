package main

import (
	"fmt"
	"strings"
)

// parseUsers reads "a@x.com:pw1,b@x.com:pw2"
func parseUsers(spec string) (map[string]string, error) {
	users := make(map[string]string)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, password, ok := strings.Cut(entry, ":")
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("invalid user %q, expected email:password", entry)
		}
		users[email] = password
	}
	return users, nil
}
