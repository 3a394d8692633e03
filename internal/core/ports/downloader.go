package ports

import "context"

// Downloader fetches and unpacks runtime tarballs.
//
//go:generate mockgen -source=downloader.go -destination=mocks/mock_downloader.go -package=mocks
type Downloader interface {
	// FetchArchive downloads a gzipped tarball from url and extracts it
	// into dest. When stripTopDir is true the single top-level directory
	// of the archive is stripped (Node tarballs carry a
	// node-v<version>-linux-x64/ prefix).
	FetchArchive(ctx context.Context, url, dest string, stripTopDir bool) error
}
