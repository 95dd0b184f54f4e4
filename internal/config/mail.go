package config

import "time"

// MailConfig holds SMTP settings shared by the confirmation sender and the
// promotion blast.
type MailConfig struct {
    Host       string
    Port       int
    Username   string
    Password   string
    From       string
    FromName   string
    TLS        bool          // require STARTTLS
    Timeout    time.Duration
    BlastEvery time.Duration // how often the promotion blast job runs
}

func LoadMailConfig() MailConfig {
    return MailConfig{
        Host:       envStr("SMTP_HOST", "localhost"),
        Port:       envInt("SMTP_PORT", 587),
        Username:   envStr("SMTP_USERNAME", ""),
        Password:   envStr("SMTP_PASSWORD", ""),
        From:       envStr("SMTP_FROM", "no-reply@cinema.local"),
        FromName:   envStr("SMTP_FROM_NAME", "Cinema Tickets"),
        TLS:        envBool("SMTP_TLS", true),
        Timeout:    envDur("SMTP_TIMEOUT", 10*time.Second),
        BlastEvery: envDur("PROMOTION_BLAST_EVERY", time.Minute),
    }
}
