package log

const colorReset = "\033[0m"

var levelColors = map[LogLevel]string{
	Debug: "\033[34m",
	Info:  "\033[32m",
	Warn:  "\033[33m",
	Error: "\033[31m",
	Fatal: "\033[35m",
}

// Color returns the ANSI sequence terminal lines of level l start with.
func Color(l LogLevel) string {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return colorReset
}
