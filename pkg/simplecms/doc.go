// Package simplecms is a small file based content management core.
//
// An App holds everything a request needs: the filesystem, the logger, the
// repository of content files, the URL strategy, registered plugins and the
// blueprint loader. It is built once at process start, usually through
// config.BuildApp, and passed explicitly.
//
// Content files and assets are entities that embed an asset.Accessor. The
// accessor builds a file or image handle on first use and proxies operations
// the entity does not define itself:
//
//	f, _ := app.File(ctx, id)
//	width, err := f.Call("width")
//
// File metadata lives in the repository (memory, Postgres or Redis), the
// bytes live below the content root or in object storage.
package simplecms
