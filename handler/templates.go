package handler

import "html/template"

const layoutHTML = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} - Video Library</title>
  <style>
    body { font-family: sans-serif; margin: 0 auto; max-width: 960px; padding: 1rem; }
    nav a { margin-right: 1rem; }
    .flash { background: #eef; border: 1px solid #99c; padding: .5rem; margin: .5rem 0; }
    .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 1rem; }
    .card img, .card .placeholder { width: 100%; aspect-ratio: 16 / 9; object-fit: cover; background: #ddd; }
    .tag { display: inline-block; background: #eee; border-radius: 3px; padding: 0 .3rem; margin: .1rem; font-size: .8rem; }
  </style>
</head>
<body>
<nav><a href="/">Videos</a><a href="/upload">Upload</a></nav>
{{range .Messages}}<div class="flash">{{.}}</div>
{{end}}{{end}}

{{define "footer"}}</body>
</html>{{end}}
`

const indexHTML = `
{{define "index"}}{{template "header" .}}
<h1>Videos</h1>
{{if .Videos}}<div class="grid">
{{range .Videos}}  <div class="card">
    <a href="/watch/{{.ID}}">{{if .HasThumbnail}}<img src="{{.ThumbnailURL}}" alt="{{.Title}}">{{else}}<div class="placeholder"></div>{{end}}</a>
    <h3><a href="/watch/{{.ID}}">{{.Title}}</a></h3>
    {{if not .CreatedAt.IsZero}}<small>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</small>{{end}}
  </div>
{{end}}</div>
{{else}}<p>No videos uploaded yet.</p>
{{end}}{{template "footer" .}}{{end}}
`

const uploadHTML = `
{{define "upload"}}{{template "header" .}}
<h1>Upload a video</h1>
<form method="post" action="/upload" enctype="multipart/form-data">
  <input type="file" name="video" accept=".mp4,.avi,.mov,.mkv">
  <button type="submit">Upload</button>
</form>
{{template "footer" .}}{{end}}
`

const watchHTML = `
{{define "watch"}}{{template "header" .}}
{{with .Video}}<h1>{{.Title}}</h1>
<video controls width="100%" {{if .HasThumbnail}}poster="{{.ThumbnailURL}}"{{end}}>
  <source src="{{.VideoURL}}" type="video/mp4">
  Your browser does not support the video tag.
</video>
<p>{{.Description}}</p>
<p>{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</p>
{{end}}{{template "footer" .}}{{end}}
`

func parseTemplates() *template.Template {
	t := template.New("pages")
	for _, page := range []string{layoutHTML, indexHTML, uploadHTML, watchHTML} {
		t = template.Must(t.Parse(page))
	}
	return t
}
