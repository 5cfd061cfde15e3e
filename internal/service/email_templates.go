package service

import "fmt"

func passwordResetEmailTemplate(name, resetURL, appName string, expiresIn string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`%s

You asked to reset your password. Choose a new one here:
%s

This link expires in %s and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, greeting(name), resetURL, expiresIn, appName)

	return subject, body
}

func welcomeEmailTemplate(name, journalURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`%s

Your journal is ready. Each day, answer three short questions and receive a Stoic reflection written for you.

Write today's entry: %s

"We suffer more often in imagination than in reality." Seneca

Best,
The %s Team`, greeting(name), journalURL, appName)

	return subject, body
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}
