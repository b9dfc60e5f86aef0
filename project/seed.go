package project

import (
	"fmt"
	"time"
)

// baseTemplate seeds main.tex when no named template is given. LuaLaTeX with
// Japanese font support, matching the toolchain's default engine.
const baseTemplate = `\documentclass[12pt,a4paper]{ltjsarticle}

% 日本語フォント設定（LuaLaTeX用）
\usepackage{luatexja-fontspec}
% \setmainjfont{Noto Serif CJK JP}  % 必要に応じてコメントアウトを外す

% 基本パッケージ
\usepackage{amsmath,amssymb}
\usepackage{graphicx}
\usepackage{hyperref}
\usepackage{listings}

% 文書情報
\title{レポートタイトル}
\author{学籍番号: \\ 氏名: }
\date{\today}

\begin{document}

\maketitle

\section{はじめに}


\section{内容}


\section{まとめ}


% 参考文献
% \bibliographystyle{plain}
% \bibliography{../../../common/bibliography}

\end{document}
`

const gitignoreTemplate = `output/*
!output/.gitkeep
*.aux
*.log
*.toc
*.lof
*.lot
*.bbl
*.blg
*.out
*.synctex.gz
`

func renderReadme(semester, course, reportName string) string {
	return fmt.Sprintf(`# %s - %s

## レポート情報
- 学期: %s
- 授業: %s
- 作成日: %s

## コンパイル方法
`+"```bash"+`
# API経由でコンパイル
curl -X POST http://localhost:5000/compile \
  -H "Content-Type: application/json" \
  -d '{"file_path": "courses/%s/%s/%s/main.tex"}'

# BibTeXを使用する場合
curl -X POST http://localhost:5000/compile \
  -H "Content-Type: application/json" \
  -d '{"file_path": "courses/%s/%s/%s/main.tex", "use_bibtex": true}'
`+"```"+`

## メモ
-

`,
		course, reportName,
		semester, course,
		time.Now().Format("2006-01-02"),
		semester, course, reportName,
		semester, course, reportName,
	)
}
