package config

// PaymentConfig selects and configures the card processor used at checkout.
type PaymentConfig struct {
    Provider  string // "stripe" or "mock"
    StripeKey string // secret key, required for stripe
    Currency  string // ISO currency code sent to the processor
}

func LoadPaymentConfig() PaymentConfig {
    pc := PaymentConfig{
        Provider:  envStr("PAYMENT_PROVIDER", "mock"),
        StripeKey: envStr("STRIPE_SECRET_KEY", ""),
        Currency:  envStr("PAYMENT_CURRENCY", "usd"),
    }
    if pc.Provider == "stripe" && pc.StripeKey == "" {
        pc.StripeKey = must("STRIPE_SECRET_KEY")
    }
    return pc
}
