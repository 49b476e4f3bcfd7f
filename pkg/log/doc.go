/*
Package log provides structured logging for the metadata-plane core using
zerolog.

The global Logger is configured once via Init, then narrowed per component
with WithComponent or WithTable. The model store logs at Debug when a
record is created and at Warn when a create is rejected because the
record or one of its index values already exists; the retry wrapper logs
at Info when it starts and at Warn for each failed attempt. Nothing logs
at Error: IndexMalformed and Serde failures are returned to the caller
without a log line, and the transaction drop guard panics without one.
*/
package log
