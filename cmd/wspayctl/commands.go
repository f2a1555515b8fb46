package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/wspay"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "WSPAY"

var errRejected = errors.New("notification rejected")

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "wspayctl",
		Short:        "WSPay signature and callback tooling",
		Long:         `Compute and verify WSPay hosted-form signatures, and build signed callback URLs for testing a deployment.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("shop-id", "", "WSPay shop id (env WSPAY_SHOP_ID)")
	flags.String("secret-key", "", "WSPay secret key (env WSPAY_SECRET_KEY)")
	flags.String("environment", string(wspay.EnvironmentTest), "Hosted form environment: prod or test (env WSPAY_ENVIRONMENT)")
	flags.String("currency", wspay.DefaultCurrency, "Accepted currency (env WSPAY_CURRENCY)")
	flags.String("base-url", "", "Public base URL of the payment service (env WSPAY_BASE_URL)")
	_ = v.BindPFlags(flags)

	cmd.AddCommand(
		newSignCommand(v),
		newVerifyCommand(v),
		newNotifyCommand(v),
		newFormURLCommand(v),
	)

	return cmd
}

func acquirerFrom(v *viper.Viper) *wspay.Acquirer {
	return wspay.NewAcquirer(wspay.Config{
		ShopID:      v.GetString("shop-id"),
		SecretKey:   v.GetString("secret-key"),
		Environment: wspay.Environment(strings.ToLower(v.GetString("environment"))),
		Currency:    v.GetString("currency"),
		BaseURL:     v.GetString("base-url"),
	})
}

func newSignCommand(v *viper.Viper) *cobra.Command {
	var cartID, amount string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute the outbound signature for a cart and amount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			signer := wspay.NewCodec(v.GetString("shop-id"), v.GetString("secret-key"))
			signature, err := signer.SignOutbound(cartID, wspay.SignatureAmount(value))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ShoppingCartID: %s\n", cartID)
			fmt.Fprintf(out, "TotalAmount:    %s\n", wspay.DisplayAmount(value))
			fmt.Fprintf(out, "Signature:      %s\n", signature)
			return nil
		},
	}

	cmd.Flags().StringVar(&cartID, "cart-id", "", "Shopping cart id, e.g. 42-1")
	cmd.Flags().StringVar(&amount, "amount", "", "Transaction amount, e.g. 1234.50")
	_ = cmd.MarkFlagRequired("cart-id")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newVerifyCommand(v *viper.Viper) *cobra.Command {
	var n domain.Notification

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Validate a return notification the way the service does",
		RunE: func(cmd *cobra.Command, _ []string) error {
			verdict := acquirerFrom(v).ValidateNotification(n)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:  %s\n", verdict.State)
			if verdict.Accepted() {
				fmt.Fprintf(out, "order:  %d\n", verdict.CartID.OrderID)
				return nil
			}
			fmt.Fprintf(out, "reason: %s\n", domain.RejectionReason(verdict.Err))
			return fmt.Errorf("%w: %v", errRejected, verdict.Err)
		},
	}

	cmd.Flags().StringVar(&n.CartID, "cart-id", "", "ShoppingCartID field")
	cmd.Flags().StringVar(&n.Success, "success", "1", "Success field")
	cmd.Flags().StringVar(&n.ApprovalCode, "approval-code", "", "ApprovalCode field")
	cmd.Flags().StringVar(&n.Signature, "signature", "", "Signature field")
	_ = cmd.MarkFlagRequired("cart-id")

	return cmd
}

func newNotifyCommand(v *viper.Viper) *cobra.Command {
	var cartID, success, approvalCode string

	cmd := &cobra.Command{
		Use:   "notify-url",
		Short: "Build a signed return URL that simulates the gateway callback",
		RunE: func(cmd *cobra.Command, _ []string) error {
			baseURL := v.GetString("base-url")
			if baseURL == "" {
				return fmt.Errorf("%w: base url is required", domain.ErrConfiguration)
			}
			shopID, secretKey := v.GetString("shop-id"), v.GetString("secret-key")
			if shopID == "" || secretKey == "" {
				return fmt.Errorf("%w: shop id and secret key are required", domain.ErrConfiguration)
			}

			target, err := url.JoinPath(baseURL, wspay.ReturnPath)
			if err != nil {
				return fmt.Errorf("invalid base url: %w", err)
			}

			query := url.Values{}
			query.Set("ShoppingCartID", cartID)
			query.Set("Success", success)
			query.Set("ApprovalCode", approvalCode)
			query.Set("Signature", wspay.SignNotification(shopID, secretKey, cartID, success, approvalCode))

			fmt.Fprintln(cmd.OutOrStdout(), target+"?"+query.Encode())
			return nil
		},
	}

	cmd.Flags().StringVar(&cartID, "cart-id", "", "Shopping cart id, e.g. 42-1")
	cmd.Flags().StringVar(&success, "success", "1", "Success flag to report")
	cmd.Flags().StringVar(&approvalCode, "approval-code", "", "Approval code to report")
	_ = cmd.MarkFlagRequired("cart-id")

	return cmd
}

func newFormURLCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "form-url",
		Short: "Print the hosted form URL for the configured environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), acquirerFrom(v).FormActionURL())
			return nil
		},
	}
}
