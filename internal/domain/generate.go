package domain

//go:generate mockgen -source=payment_provider.go -destination=mocks/mock_payment_provider.go -package=mocks
//go:generate mockgen -source=outbox.go -destination=mocks/mock_outbox.go -package=mocks
//go:generate mockgen -source=ad_session.go -destination=mocks/mock_ad_session.go -package=mocks
//go:generate mockgen -source=user.go -destination=mocks/mock_user.go -package=mocks
//go:generate mockgen -source=notification.go -destination=mocks/mock_notification.go -package=mocks
//go:generate mockgen -source=earnings.go -destination=mocks/mock_earnings.go -package=mocks
//go:generate mockgen -source=payment.go -destination=mocks/mock_payment.go -package=mocks
//go:generate mockgen -source=ledger.go -destination=mocks/mock_ledger.go -package=mocks
//go:generate mockgen -source=withdrawal.go -destination=mocks/mock_withdrawal.go -package=mocks
