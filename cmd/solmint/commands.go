package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/services"
)

func requireAccount(svc *services.DappService) error {
	if !svc.Snapshot().Connected() {
		return errors.New("no wallet connected, run 'solmint connect' first")
	}
	return nil
}

func runStatus(cmd *cobra.Command, opts *options) error {
	svc, err := newCLIService(cmd.Context(), opts)
	if err != nil {
		return err
	}

	state := svc.Snapshot()
	out := cmd.OutOrStdout()
	if !state.Connected() {
		fmt.Fprintln(out, "not connected")
		return nil
	}

	fmt.Fprintf(out, "account: %s\n", state.Account)
	fmt.Fprintf(out, "balance: %s SOL\n", blockchain.FormatSOL(state.Lamports))
	fmt.Fprintf(out, "cluster: %s\n", svc.GetConfig().Cluster)
	return nil
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connected account and its balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}
}

func newConnectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet and remember its account",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}

			err = svc.Connect(cmd.Context())
			// let a pending install page open before exiting
			svc.Wait()
			if err != nil {
				return err
			}

			state := svc.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s SOL\n", state.Account, blockchain.FormatSOL(state.Lamports))
			return nil
		},
	}
}

func newDisconnectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet and forget its account",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return svc.Disconnect(cmd.Context())
		},
	}
}

func newBalanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the balance of the connected account in SOL",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := requireAccount(svc); err != nil {
				return err
			}
			if err := svc.RefreshBalance(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), blockchain.FormatSOL(svc.Snapshot().Lamports))
			return nil
		},
	}
}

func newTransferCmd(opts *options) *cobra.Command {
	var receiver, amount string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send SOL from the connected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := requireAccount(svc); err != nil {
				return err
			}

			link, err := svc.SubmitTransfer(cmd.Context(), receiver, amount)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().StringVarP(&receiver, "to", "t", "", "Receiver address")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in SOL")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

type sourceFlags struct {
	url  string
	file string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "URL of the image to upload")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Local image file to upload")
	cmd.MarkFlagsMutuallyExclusive("url", "file")
}

func (f *sourceFlags) set() bool {
	return f.url != "" || f.file != ""
}

func (f *sourceFlags) upload(cmd *cobra.Command, svc *services.DappService) (string, error) {
	if f.url != "" {
		return svc.UploadFromURL(cmd.Context(), f.url)
	}
	return svc.UploadFile(cmd.Context(), f.file)
}

func newUploadCmd(opts *options) *cobra.Command {
	var source sourceFlags
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an image to IPFS",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !source.set() {
				return errors.New("one of --url or --file is required")
			}

			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}

			uri, err := source.upload(cmd, svc)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}
	source.register(cmd)
	return cmd
}

func newMintCmd(opts *options) *cobra.Command {
	var source sourceFlags
	var image string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an NFT of an image to the connected account",
		Long: `Mint an NFT of an image to the connected account.

The image is either uploaded first (--url or --file) or given as an
address returned by an earlier upload (--image).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCLIService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := requireAccount(svc); err != nil {
				return err
			}

			switch {
			case image != "":
				svc.SetUploadedAsset(image)
			case source.set():
				if _, err := source.upload(cmd, svc); err != nil {
					return err
				}
			}

			result, err := svc.GenerateNFT(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", result.Signature, result.ExplorerURL)
			return nil
		},
	}
	source.register(cmd)
	cmd.Flags().StringVarP(&image, "image", "i", "", "Address of an already uploaded image")
	cmd.MarkFlagsMutuallyExclusive("image", "url")
	cmd.MarkFlagsMutuallyExclusive("image", "file")
	return cmd
}
