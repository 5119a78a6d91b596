package solana

import (
	bin "encoding/binary"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

var (
	ataInstructionTypeID          = binary.NoTypeIDDefaultID
	transferInstructionTypeID     = binary.TypeIDFromUint32(system.Instruction_Transfer, bin.LittleEndian)
	syncNativeInstructionTypeID   = binary.TypeIDFromUint8(token.Instruction_SyncNative)
	closeAccountInstructionTypeID = binary.TypeIDFromUint8(token.Instruction_CloseAccount)
)

// SplitInstructions splits instructions into three phases: start, middle, end.
// Account creation and SOL wrapping go to the start phase, account closing
// to the end phase; both are de-duplicated. Repeated transfers between the
// same pair of accounts are folded into the first one.
func SplitInstructions(oldInstructions []solana.Instruction) ([]solana.Instruction, []solana.Instruction, []solana.Instruction) {
	var (
		ataCreateInstructions    []*associatedtokenaccount.Create
		transferInstructions     []*system.Transfer
		syncNativeInstructions   []*token.SyncNative
		closeAccountInstructions []*token.CloseAccount

		startInstruction  []solana.Instruction
		middleInstruction []solana.Instruction
		endInstruction    []solana.Instruction
	)

	for _, v := range oldInstructions {
		switch inst := v.(type) {
		case *associatedtokenaccount.Instruction:
			ataCreate, ok := inst.Impl.(associatedtokenaccount.Create)
			if inst.TypeID != ataInstructionTypeID || !ok {
				middleInstruction = append(middleInstruction, v)
				continue
			}
			bSave := false
			for _, instruction := range ataCreateInstructions {
				if ataCreate.Mint != instruction.Mint ||
					ataCreate.Payer != instruction.Payer ||
					ataCreate.Wallet != instruction.Wallet {
					continue
				}
				bSave = true
				break
			}
			if !bSave {
				ataCreateInstructions = append(ataCreateInstructions, &ataCreate)
				startInstruction = append(startInstruction, v)
			}
		case *system.Instruction:
			transfer, ok := inst.Impl.(system.Transfer)
			if inst.TypeID != transferInstructionTypeID || !ok {
				middleInstruction = append(middleInstruction, v)
				continue
			}
			bSave := false
			for _, instruction := range transferInstructions {
				if transfer.GetFundingAccount().PublicKey != instruction.GetFundingAccount().PublicKey ||
					transfer.GetRecipientAccount().PublicKey != instruction.GetRecipientAccount().PublicKey {
					continue
				}
				bSave = true
				// add lamports to first
				*instruction.Lamports += *transfer.Lamports
				break
			}
			if !bSave {
				transferInstructions = append(transferInstructions, &transfer)
				startInstruction = append(startInstruction, v)
			}
		case *token.Instruction:
			switch inst.TypeID {
			case syncNativeInstructionTypeID:
				syncNative, ok := inst.Impl.(token.SyncNative)
				if !ok {
					middleInstruction = append(middleInstruction, v)
					continue
				}
				bSave := false
				for _, instruction := range syncNativeInstructions {
					if syncNative.GetTokenAccount().PublicKey != instruction.GetTokenAccount().PublicKey {
						continue
					}
					bSave = true
					break
				}
				if !bSave {
					syncNativeInstructions = append(syncNativeInstructions, &syncNative)
					startInstruction = append(startInstruction, v)
				}
			case closeAccountInstructionTypeID:
				closeAccount, ok := inst.Impl.(token.CloseAccount)
				if !ok {
					middleInstruction = append(middleInstruction, v)
					continue
				}
				bSave := false
				for _, instruction := range closeAccountInstructions {
					if closeAccount.GetAccount().PublicKey != instruction.GetAccount().PublicKey ||
						closeAccount.GetDestinationAccount().PublicKey != instruction.GetDestinationAccount().PublicKey ||
						closeAccount.GetOwnerAccount().PublicKey != instruction.GetOwnerAccount().PublicKey {
						continue
					}
					bSave = true
					break
				}
				if !bSave {
					closeAccountInstructions = append(closeAccountInstructions, &closeAccount)
					endInstruction = append(endInstruction, v)
				}
			default:
				middleInstruction = append(middleInstruction, v)
			}
		default:
			middleInstruction = append(middleInstruction, v)
		}
	}
	return startInstruction, middleInstruction, endInstruction
}

// MergeInstructions merges instructions
func MergeInstructions(oldInstructions []solana.Instruction) []solana.Instruction {
	var (
		newInstructions []solana.Instruction
	)

	startInstruction, middleInstruction, endInstruction := SplitInstructions(oldInstructions)

	newInstructions = append(newInstructions, startInstruction...)
	newInstructions = append(newInstructions, middleInstruction...)
	newInstructions = append(newInstructions, endInstruction...)

	return newInstructions
}
