package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitbill-network/ebill-core/core/bill"
	"github.com/bitbill-network/ebill-core/core/chain"
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Act on a bill's chain (§4.2 of the bill action engine)",
}

// resolveParty builds a chain.Party for nodeID, filling in the contact
// book's name/address/relay if known, or leaving a bare anonymous party
// otherwise (§3: payee/endorsee may be anonymous).
func resolveParty(n *node, nodeID string) chain.Party {
	id := chain.NodeID(nodeID)
	if c, err := n.contacts.Get(context.Background(), id); err == nil {
		return chain.Party{NodeID: id, Name: c.Name, PostalAddress: c.PostalAddress, RelayURL: c.RelayURL}
	}
	return chain.Party{NodeID: id}
}

func now() uint64 { return uint64(time.Now().Unix()) }

var billIssueCmd = &cobra.Command{
	Use:   "issue [drawee_node_id] [payee_node_id] [sum] [currency] [maturity_date]",
	Short: "Issue a new three-party bill drawn by the local identity",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, self, err := n.localSigner()
		if err != nil {
			return err
		}
		var sum uint64
		if _, err := fmt.Sscanf(args[2], "%d", &sum); err != nil {
			return fmt.Errorf("invalid sum %q: %w", args[2], err)
		}
		billType := chain.BillTypeThreeParties
		drawer := chain.Party{NodeID: self.NodeID, Name: self.Name, PostalAddress: self.PostalAddress}
		drawee := resolveParty(n, args[0])
		payee := resolveParty(n, args[1])

		billKeys, err := chain.NewKeyPair()
		if err != nil {
			return fmt.Errorf("generate bill key pair: %w", err)
		}
		data := bill.IssueData{
			Type:         billType,
			Drawer:       drawer,
			Drawee:       drawee,
			Payee:        payee,
			Sum:          sum,
			Currency:     args[3],
			IssueDate:    time.Now().UTC().Format("2006-01-02"),
			MaturityDate: args[4],
		}
		v, err := n.engine.Issue(context.Background(), data, billKeys, signer, now())
		if err != nil {
			return err
		}
		fmt.Printf("bill_id: %s\n", v.BillID)
		return nil
	},
}

func billIDArg(args []string) chain.BillID { return chain.BillID(args[0]) }

var billViewCmd = &cobra.Command{
	Use:   "view [bill_id]",
	Short: "Print a bill's current derived state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		v, err := n.engine.View(context.Background(), billIDArg(args), now())
		if err != nil {
			return err
		}
		fmt.Printf("bill_id: %s\nholder: %s\naccepted: %v\npaid: %v\nsold: %v\nrecoursed: %v\nminted: %v\nsum: %d %s\nblock_height: %d\n",
			v.BillID, v.Holder, v.Accepted, v.Paid, v.Sold, v.Recoursed, v.Minted, v.Sum, v.Currency, v.BlockHeight)
		return nil
	},
}

var billRequestToAcceptCmd = &cobra.Command{
	Use:   "request-to-accept [bill_id]",
	Short: "Request that the drawee accept the bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.RequestToAccept(context.Background(), billIDArg(args), signer, now())
		return err
	},
}

var billAcceptCmd = &cobra.Command{
	Use:   "accept [bill_id]",
	Short: "Accept the bill as drawee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.Accept(context.Background(), billIDArg(args), signer, now())
		return err
	},
}

var billRejectAcceptCmd = &cobra.Command{
	Use:   "reject-to-accept [bill_id] [reason]",
	Short: "Reject a pending request to accept",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		reason := ""
		if len(args) == 2 {
			reason = args[1]
		}
		_, err = n.engine.RejectToAccept(context.Background(), billIDArg(args), reason, signer, now())
		return err
	},
}

var billRequestToPayCmd = &cobra.Command{
	Use:   "request-to-pay [bill_id] [currency]",
	Short: "Request payment as the current holder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.RequestToPay(context.Background(), billIDArg(args), args[1], signer, now())
		return err
	},
}

var billRejectPayCmd = &cobra.Command{
	Use:   "reject-to-pay [bill_id] [reason]",
	Short: "Reject a pending request to pay",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		reason := ""
		if len(args) == 2 {
			reason = args[1]
		}
		_, err = n.engine.RejectToPay(context.Background(), billIDArg(args), reason, signer, now())
		return err
	},
}

var billEndorseCmd = &cobra.Command{
	Use:   "endorse [bill_id] [endorsee_node_id]",
	Short: "Endorse the bill to a new holder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.Endorse(context.Background(), billIDArg(args), resolveParty(n, args[1]), signer, now())
		return err
	},
}

var billOfferToSellCmd = &cobra.Command{
	Use:   "offer-to-sell [bill_id] [buyer_node_id] [sum] [currency]",
	Short: "Offer to sell the bill to buyer",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		var sum uint64
		if _, err := fmt.Sscanf(args[2], "%d", &sum); err != nil {
			return fmt.Errorf("invalid sum %q: %w", args[2], err)
		}
		_, err = n.engine.OfferToSell(context.Background(), billIDArg(args), resolveParty(n, args[1]), sum, args[3], signer, now())
		return err
	},
}

var billSellCmd = &cobra.Command{
	Use:   "sell [bill_id] [payment_address]",
	Short: "Complete a sale once the buyer's payment has been observed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.Sell(context.Background(), billIDArg(args), args[1], signer, now())
		return err
	},
}

var billRejectBuyCmd = &cobra.Command{
	Use:   "reject-to-buy [bill_id] [reason]",
	Short: "Reject a pending offer to sell, as the named buyer",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		reason := ""
		if len(args) == 2 {
			reason = args[1]
		}
		_, err = n.engine.RejectToBuy(context.Background(), billIDArg(args), reason, signer, now())
		return err
	},
}

var billMintCmd = &cobra.Command{
	Use:   "mint [bill_id] [mint_node_id] [sum] [currency]",
	Short: "Mint the bill to a financial institution",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		var sum uint64
		if _, err := fmt.Sscanf(args[2], "%d", &sum); err != nil {
			return fmt.Errorf("invalid sum %q: %w", args[2], err)
		}
		_, err = n.engine.Mint(context.Background(), billIDArg(args), resolveParty(n, args[1]), sum, args[3], signer, now())
		return err
	},
}

var billRequestRecourseCmd = &cobra.Command{
	Use:   "request-recourse [bill_id] [recoursee_node_id] [reason:accept|pay]",
	Short: "Demand payment from a prior holder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		reason := chain.RecourseReasonAccept
		if args[2] == "pay" {
			reason = chain.RecourseReasonPay
		}
		_, err = n.engine.RequestRecourse(context.Background(), billIDArg(args), resolveParty(n, args[1]), reason, signer, now())
		return err
	},
}

var billRecourseCmd = &cobra.Command{
	Use:   "recourse [bill_id] [payment_address]",
	Short: "Complete a recourse payment once observed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		_, err = n.engine.Recourse(context.Background(), billIDArg(args), args[1], signer, now())
		return err
	},
}

var billRejectPayRecourseCmd = &cobra.Command{
	Use:   "reject-to-pay-recourse [bill_id] [reason]",
	Short: "Reject a pending request for recourse",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := openNode()
		if err != nil {
			return err
		}
		signer, _, err := n.localSigner()
		if err != nil {
			return err
		}
		reason := ""
		if len(args) == 2 {
			reason = args[1]
		}
		_, err = n.engine.RejectToPayRecourse(context.Background(), billIDArg(args), reason, signer, now())
		return err
	},
}

func init() {
	billCmd.AddCommand(
		billIssueCmd, billViewCmd,
		billRequestToAcceptCmd, billAcceptCmd, billRejectAcceptCmd,
		billRequestToPayCmd, billRejectPayCmd,
		billEndorseCmd,
		billOfferToSellCmd, billSellCmd, billRejectBuyCmd,
		billMintCmd,
		billRequestRecourseCmd, billRecourseCmd, billRejectPayRecourseCmd,
	)
}
