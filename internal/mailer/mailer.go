package mailer

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailTemplate struct {
	file    string
	subject string
}

var templates = map[string]mailTemplate{
	domain.MailTypeExamGenerated: {
		file:    "templates/exam_generated.html",
		subject: "自动组卷系统 - 组卷完成",
	},
	domain.MailTypeExamGenerationFailed: {
		file:    "templates/exam_generation_failed.html",
		subject: "自动组卷系统 - 组卷失败",
	},
}

// Build 根据邮件类型渲染对应的模板，data 一般是从消息队列中反序列化得到的 map
func Build(from string, m *domain.MailMessage) (*mail.Msg, error) {
	mt, ok := templates[m.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", m.Type)
	}

	tmpl, err := template.ParseFS(templateFS, mt.file)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(m.To); err != nil {
		return nil, err
	}
	msg.Subject(mt.subject)
	if err := msg.SetBodyHTMLTemplate(tmpl, m.Data); err != nil {
		return nil, err
	}

	return msg, nil
}
