package services

// User-facing notices and status texts.
const (
	msgNotInstalled     = "Phantom is not installed"
	msgConnected        = "Your wallet is connected 👻"
	msgConnectFailed    = "Could not connect your wallet"
	msgDisconnected     = "Your wallet was disconnected"
	msgDisconnectFailed = "Could not disconnect your wallet"
	msgNotConnected     = "Connect your wallet first"
	msgBalanceFailed    = "Something went wrong getting the balance"
	msgInsufficient     = "You don't have enough balance"
	msgTransferInFlight = "A transfer is already in progress"
	msgTransferSent     = "Transaction sent successfully :D"
	msgTransferFailed   = "Error sending the transaction"
	msgUploadInFlight   = "An upload is already in progress"
	msgUploadFailed     = "Error uploading to IPFS"
	msgNeedUpload       = "Upload an image to IPFS first"
	msgMintInFlight     = "A mint is already in progress"
	msgMintFailed       = "Error generating the NFT"
	msgMinted           = "Your NFT was minted"
	statusTransformURL  = "Transforming url..."
	statusReadingFile   = "Reading file..."
	statusUploading     = "Uploading to IPFS..."
	statusUploaded      = "Your file URL is: %s"
	statusUploadFailed  = "Upload failed"
	statusCreatingNFT   = "Creating your NFT... ❤"
	statusMinting       = "Minting your NFT on the Solana blockchain 🚀 Please wait..."
	statusMinted        = "Done! Your NFT was created, check your Phantom wallet 🖖"
	statusMintFailed    = "Mint failed"
)
