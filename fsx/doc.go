// Package fsx reads media files from the local disk or S3 so they can be
// uploaded to a messaging provider.
//
//	router := fsx.Router{Local: fsx.NewLocalFS(""), S3: s3fs}
//	file, err := router.Open(ctx, "s3://media/invoices/2024-01.pdf")
package fsx
