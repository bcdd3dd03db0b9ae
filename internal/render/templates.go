package render

const postTemplate = `{{define "post"}}{{if unread .Read}}<a name="unread"></a>{{end}}<a id="p{{.ID}}"></a>` +
	`<div class="forumpost clearfix{{readClass .Read}}{{if .FirstPost}} firstpost starter{{end}}" role="region" aria-label="{{.AriaLabel}}">` +
	`<div class="row header clearfix">` +
	`<div class="left picture">{{if .Picture.URL}}<img src="{{.Picture.URL}}" alt="{{.Picture.Alt}}" class="userpicture" width="35" height="35">{{end}}</div>` +
	`<div class="topic{{if .FirstPost}} firstpost starter{{end}}">` +
	`<div class="subject" role="heading" aria-level="2">{{.Subject}}</div>` +
	`<div class="author" role="heading" aria-level="2">{{.Byline}}</div>` +
	`</div></div>` +
	`<div class="row maincontent clearfix">` +
	`<div class="left"><div class="grouppictures">{{range .Groups}}<img src="{{.URL}}" alt="{{.Alt}}" title="{{.Alt}}" class="grouppicture">{{else}}&nbsp;{{end}}</div></div>` +
	`<div class="no-overflow"><div class="content">` +
	`<div class="posting {{if .Shortened}}shortenedpost{{else}}fullpost{{end}}">{{.Body}}` +
	`{{with .ReadMore}}<a href="{{.URL}}">{{.Label}}</a><div class="post-word-count">{{.Note}}</div>{{end}}` +
	`{{if .WordCount}}<div class="post-word-count">{{.WordCount}}</div>{{end}}` +
	`{{if not .Shortened}}<div class="attachedimages">{{range .Images}}<img src="{{.URL}}" alt="{{.Name}}"><br>{{end}}</div>{{end}}` +
	`</div></div></div></div>` +
	`<div class="row side"><div class="left">&nbsp;</div><div class="options clearfix">` +
	`{{if .Attachments}}<div class="attachments">{{range .Attachments}}<a href="{{.URL}}">{{.Name}}</a><br>{{end}}</div>{{end}}` +
	`{{if .Rating}}<div class="forum-post-rating">{{.Rating}}</div>{{end}}` +
	`<div class="commands">{{range $i, $c := .Commands}}{{if $i}} | {{end}}<a href="{{$c.URL}}"{{with $c.Note}} title="{{.}}"{{end}}>{{$c.Label}}</a>{{end}}</div>` +
	`{{with .Discuss}}<div class="link"><a href="{{.URL}}">{{.Label}}</a>&nbsp;({{.Note}})</div>{{end}}` +
	`{{if .Footer}}<div class="footer">{{.Footer}}</div>{{end}}` +
	`</div></div></div>{{end}}`

const hiddenTemplate = `{{define "hidden"}}<a id="p{{.ID}}"></a>` +
	`<div class="forumpost clearfix" role="region" aria-label="{{.AriaLabel}}">` +
	`<div class="row header"><div class="left picture"></div>` +
	`<div class="topic{{if not .Reply}} starter{{end}}">` +
	`<div class="subject" role="header">{{.Subject}}</div>` +
	`<div class="author" role="header">{{.Author}}</div>` +
	`</div></div>` +
	`<div class="row"><div class="left side">&nbsp;</div><div class="content">{{.Body}}</div></div>` +
	`</div>{{end}}`
