package model

// DefaultShortcuts returns the shortcuts installed by "restore defaults".
func DefaultShortcuts() Collection {
	return Collection{
		{Name: "Google", URL: "https://www.google.com"},
		{Name: "YouTube", URL: "https://www.youtube.com"},
		{Name: "GitHub", URL: "https://github.com"},
		{Name: "知乎", URL: "https://www.zhihu.com"},
		{Name: "微博", URL: "https://weibo.com"},
		{Name: "哔哩哔哩", URL: "https://www.bilibili.com"},
	}
}
