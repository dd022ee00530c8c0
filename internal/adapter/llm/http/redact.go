package http

import (
	"fmt"
	"regexp"
)

// MaxLoggedResponseLength is the maximum length of response text to
// include in logs. Longer responses are truncated so source code and
// secrets never flow into log aggregators in full.
const MaxLoggedResponseLength = 200

// TruncateForLogging truncates a response string for logging, keeping
// just enough context for debugging.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

// secretParamPatterns match query parameters that carry credentials.
var secretParamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(key)=[^&"\s]+`),
	regexp.MustCompile(`(apiKey)=[^&"\s]+`),
	regexp.MustCompile(`(api_key)=[^&"\s]+`),
	regexp.MustCompile(`(token)=[^&"\s]+`),
	regexp.MustCompile(`(access_token)=[^&"\s]+`),
}

// RedactURLSecrets strips API keys and tokens from URLs embedded in
// error messages before they are logged.
//
//	input:  "https://api.example.com/v1?key=secret123&foo=bar"
//	output: "https://api.example.com/v1?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}
	result := text
	for _, re := range secretParamPatterns {
		result = re.ReplaceAllString(result, "$1=[REDACTED]")
	}
	return result
}
