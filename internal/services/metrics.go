package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesUploadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fileshare_files_uploaded_total",
		Help: "Files accepted by the upload pipeline, by MIME type.",
	}, []string{"mime_type"})

	uploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fileshare_uploaded_bytes_total",
		Help: "Bytes written to object storage by accepted uploads.",
	})

	uploadsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fileshare_uploads_rejected_total",
		Help: "Upload batches rejected before any write, by reason.",
	}, []string{"reason"})

	accessDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fileshare_access_denied_total",
		Help: "Requests refused by the access evaluator, by operation kind.",
	}, []string{"operation"})

	linksIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fileshare_links_issued_total",
		Help: "Share links issued.",
	})
)
