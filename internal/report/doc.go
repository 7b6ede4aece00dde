// Package report exports the result store snapshot and delivers it.
//
// WriteCSVFile renders every row as CSV, WriteParquetFile writes the same rows
// as a columnar file, and Mailer sends the CSV and the database file as
// attachments over SMTP. Delivery is optional: a Mailer without complete
// credentials returns ErrDeliveryNotConfigured so callers can log a notice and
// carry on.
package report
